package detect

import "testing"

func TestBest(t *testing.T) {
	detections := []Detection{
		{ClassName: "junta_cria", Confidence: 0.42},
		{ClassName: "roda_bipartida", Confidence: 0.91},
		{ClassName: "obstaculo_limpeza", Confidence: 0.55},
	}

	best := Best(detections)
	if best == nil {
		t.Fatal("Expected a best detection, got nil")
	}
	if best.ClassName != "roda_bipartida" || best.Confidence != 0.91 {
		t.Errorf("Expected roda_bipartida at 0.91, got %s at %v", best.ClassName, best.Confidence)
	}
}

func TestBest_TieFirstWins(t *testing.T) {
	detections := []Detection{
		{ClassName: "first", Confidence: 0.8},
		{ClassName: "second", Confidence: 0.8},
	}

	for i := 0; i < 5; i++ {
		best := Best(detections)
		if best.ClassName != "first" {
			t.Fatalf("Tie-break should pick the first detection, got %s", best.ClassName)
		}
	}
}

func TestBest_Empty(t *testing.T) {
	if Best(nil) != nil {
		t.Error("Best of empty slice should be nil")
	}
}
