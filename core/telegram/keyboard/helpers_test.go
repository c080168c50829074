package keyboard

import "testing"

func TestChunk(t *testing.T) {
	rows := Chunk([]int{1, 2, 3, 4, 5, 6, 7}, 3)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if len(rows[2]) != 1 || rows[2][0] != 7 {
		t.Fatalf("last row = %v", rows[2])
	}
	if got := Chunk([]int{1, 2}, 0); len(got) != 2 {
		t.Fatalf("n=0 should give one item per row, got %v", got)
	}
	if got := Chunk[int](nil, 3); len(got) != 0 {
		t.Fatalf("empty input gave %v", got)
	}
}

func TestInlineKeepsRawData(t *testing.T) {
	markup := Inline([][]Button{
		{{Text: "BTCUSDT", Data: "stats_BTCUSDT"}, {Text: "ETHUSDT", Data: "stats_ETHUSDT"}},
		nil,
		{{Text: "Next »", Data: "page_2"}},
	})
	if len(markup.InlineKeyboard) != 2 {
		t.Fatalf("rows = %d, want 2", len(markup.InlineKeyboard))
	}
	if got := markup.InlineKeyboard[0][1].Data; got != "stats_ETHUSDT" {
		t.Fatalf("button data = %q", got)
	}
	if got := markup.InlineKeyboard[1][0].Text; got != "Next »" {
		t.Fatalf("button text = %q", got)
	}
}
