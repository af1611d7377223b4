package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/google/go-cmp/cmp"
	"longevity-frame/internal/domain"
)

func TestRenderProducesFramePNG(t *testing.T) {
	r := NewRenderer()
	refs := []domain.ImageRef{
		{Kind: domain.ImageInitial},
		{Kind: domain.ImageQuestion, Num: 3, Total: 8, Text: "Exercise frequency?", Emoji: "🏃"},
		{Kind: domain.ImageResults, Score: 72, Tier: domain.TierThriving, Badge: "Gold"},
		{Kind: domain.ImageShare, Score: 91, Tier: domain.TierLongevityChampion, Badge: "Platinum"},
	}
	for _, ref := range refs {
		data, err := r.Render(ref)
		if err != nil {
			t.Fatalf("render %s: %v", ref.Kind, err)
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("decode %s: %v", ref.Kind, err)
		}
		if b := img.Bounds(); b.Dx() != Width || b.Dy() != Height {
			t.Fatalf("%s: expected %dx%d, got %v", ref.Kind, Width, Height, b)
		}
	}
}

func TestQueryRoundTrip(t *testing.T) {
	refs := []domain.ImageRef{
		{Kind: domain.ImageInitial},
		{Kind: domain.ImageQuestion, Num: 2, Total: 8, Text: "Hours of sleep per night?", Emoji: "💤"},
		{Kind: domain.ImageResults, Score: 55, Tier: domain.TierGoodFoundation, Badge: "Silver"},
	}
	for _, ref := range refs {
		if diff := cmp.Diff(ref, ParseQuery(Query(ref))); diff != "" {
			t.Fatalf("query round trip (-want +got):\n%s", diff)
		}
	}
}

func TestParseQueryDefaults(t *testing.T) {
	ref := ParseQuery(Query(domain.ImageRef{Kind: "bogus"}))
	if ref.Kind != domain.ImageInitial {
		t.Fatalf("expected initial for unknown type, got %s", ref.Kind)
	}

	q := Query(domain.ImageRef{Kind: domain.ImageResults, Score: 300, Tier: "nope"})
	ref = ParseQuery(q)
	if ref.Score != 100 || ref.Tier != domain.TierLongevityChampion {
		t.Fatalf("expected clamped score and derived tier, got %+v", ref)
	}
}

func TestFallbackPNGDecodes(t *testing.T) {
	if _, err := png.Decode(bytes.NewReader(FallbackPNG())); err != nil {
		t.Fatalf("decode fallback: %v", err)
	}
}

func TestWrap(t *testing.T) {
	got := wrap("Do you follow Mediterranean diet principles?", 20)
	want := []string{"Do you follow", "Mediterranean diet", "principles?"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("wrap (-want +got):\n%s", diff)
	}
}
