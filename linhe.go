/*
Package linhe is a pure Go library for the evaluation of linear functions over encrypted data.
A client encrypts its inputs under the Exact (BFV-style) or the Approximate (CKKS-style)
Ring-Learning-With-Errors scheme, a server computes a weighted sum of the ciphertexts with
plaintext weights it owns, and only the client can decrypt the result.
*/
package linhe
