package checksum

import (
	"io"
	"strings"
	"testing"
)

// BenchmarkSum benchmarks hashing in-memory content
func BenchmarkSum(b *testing.B) {
	content := []byte(strings.Repeat("P1,100,Alice,TeamA\n", 100))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Sum(content)
	}
}

// BenchmarkReader benchmarks hashing a 1MB stream through Reader
func BenchmarkReader(b *testing.B) {
	content := strings.Repeat("1,1,1,1,Kohli,Starc,Rohit,1,0,1,,,\n", 30000)
	b.SetBytes(int64(len(content)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := NewReader(strings.NewReader(content))
		_, _ = io.Copy(io.Discard, r)
		_ = r.Sum()
	}
}
