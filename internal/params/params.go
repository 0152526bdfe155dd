package params

const (
	// K1 is the default bit length of the blinding value β embedded in a reencryption key.
	K1 = 80
	// K2 is the default bit length of the Fiat–Shamir challenge space.
	K2 = 80
	// BitsSafePrime is the default bit length of each safe prime p, q composing N.
	BitsSafePrime = 1024

	// MinBitsSafePrime is the smallest prime size accepted by the scheme.
	// Anything smaller cannot hold the plaintext masks used in tests.
	MinBitsSafePrime = 16

	// SecParam is the computational security parameter used for content identifiers.
	SecParam = 256
	SecBytes = SecParam / 8

	// DigestLengthBytes is the output size of content identifiers.
	DigestLengthBytes = SecBytes

	// KMACRate is the cSHAKE256 rate in bytes, used by bytepad in KMAC256.
	KMACRate = 136
	// SearchKeyHashBytes is the length of the keyed search-key hash.
	SearchKeyHashBytes = 32
)
