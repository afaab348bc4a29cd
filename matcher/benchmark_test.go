package matcher

import "testing"

func BenchmarkMatch(b *testing.B) {
	template := `\left(\frac{#1}{#2}\right)^{#3}`
	body := `\left(\frac{x+1}{y-\sqrt{2}}\right)^{n}`

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ok, err := Match(template, body); err != nil || !ok {
			b.Fatalf("match failed: ok=%v err=%v", ok, err)
		}
	}
}
