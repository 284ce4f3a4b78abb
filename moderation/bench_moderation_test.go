package moderation

import (
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func BenchmarkModerator_Censor(b *testing.B) {
	words := make([]string, 0, 10_000)
	for i := 0; i < 10_000; i++ {
		words = append(words, fmt.Sprintf("forbidden%dword", i))
	}
	mod, err := NewModerator(words, '*', slog.New(slog.DiscardHandler))
	if err != nil {
		b.Fatal(err)
	}
	text := strings.Repeat("a perfectly normal sentence with forbidden42word inside ", 20)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		mod.Censor(text)
	}
}
