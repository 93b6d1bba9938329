package qrcard

// validMaskTypes contains all valid mask types for option validation.
var validMaskTypes = map[MaskType]bool{
	MaskEmail: true,
	MaskPhone: true,
	MaskCard:  true,
	MaskName:  true,
	MaskLast4: true,
}

// validHashAlgos contains all valid fingerprint algorithms.
var validHashAlgos = map[HashAlgo]bool{
	HashBLAKE2b: true,
	HashSHA256:  true,
}

// IsValidMaskType returns true if the type is a known mask type.
func IsValidMaskType(mt MaskType) bool {
	return validMaskTypes[mt]
}

// IsValidHashAlgo returns true if the algorithm is a known fingerprint algorithm.
func IsValidHashAlgo(algo HashAlgo) bool {
	return validHashAlgos[algo]
}
