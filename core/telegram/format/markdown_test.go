package format

import "testing"

func TestEscapeMarkdown(t *testing.T) {
	got := EscapeMarkdown("min_qty *must* be [set] `now`")
	want := "min\\_qty \\*must\\* be \\[set] \\`now\\`"
	if got != want {
		t.Fatalf("EscapeMarkdown = %q, want %q", got, want)
	}
	if EscapeMarkdown("BTCUSDT 0.01") != "BTCUSDT 0.01" {
		t.Fatal("plain text must pass through")
	}
}

func TestCode(t *testing.T) {
	if got := Code("BTC`USDT"); got != "`BTCUSDT`" {
		t.Fatalf("Code = %q", got)
	}
}
