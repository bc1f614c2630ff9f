package utils

// HashString computes the 32-bit FNV-1a hash of the given string. Type
// sets hash their interning key with it, which keeps equal sets at
// equal hashes without walking the members.
func HashString(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
