package denylist

import (
	"testing"
)

func BenchmarkMatchDestructive_NoMatch(b *testing.B) {
	dl := NewDefault()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dl.MatchDestructive("sort contacts by last_name then first_name", false)
	}
}

func BenchmarkMatchDestructive_Folded(b *testing.B) {
	dl := NewDefault()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dl.MatchDestructive("Please DELETE the archive", true)
	}
}
