// Package rlwe implements the RLWE layer shared by the Exact and Approximate schemes:
// parameter validation, the modulus chain, key generation, encryption, decryption
// and the key-free evaluation of linear functions (plaintext products, additions,
// rescaling) with worst-case noise bookkeeping.
package rlwe
