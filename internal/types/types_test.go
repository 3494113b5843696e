package types

import (
	"encoding/json"
	"testing"
)

func TestIntFromAny(t *testing.T) {
	cases := []struct {
		in   any
		want int
	}{
		{float64(3), 3},
		{7, 7},
		{json.Number("12"), 12},
		{"5", 0},
		{nil, 0},
	}
	for _, tc := range cases {
		if got := IntFromAny(tc.in); got != tc.want {
			t.Errorf("IntFromAny(%#v): got %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestProgressFromPayload(t *testing.T) {
	p := ProgressFromPayload(map[string]any{
		"file":  "a.pdf",
		"index": float64(1),
		"total": float64(4),
		"stage": "embedding",
		"model": "mini",
	})
	if p.File != "a.pdf" || p.Index != 1 || p.Total != 4 || p.Stage != "embedding" {
		t.Fatalf("got %+v", p)
	}
	if p.Percent != 25 {
		t.Errorf("Percent derived from index/total: got %v, want 25", p.Percent)
	}
	if p.Extra["model"] != "mini" {
		t.Errorf("Extra: got %v", p.Extra)
	}

	explicit := ProgressFromPayload(map[string]any{"pct": float64(40), "index": float64(1), "total": float64(4)})
	if explicit.Percent != 40 {
		t.Errorf("explicit pct overridden: got %v", explicit.Percent)
	}
}

func TestBotNullableReferences(t *testing.T) {
	var bot Bot
	if err := json.Unmarshal([]byte(`{"id":1,"name":"b","instructions":"x","dataset_id":null,"chorus_model_id":3,"rag_results_count":5}`), &bot); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if bot.DatasetID != nil {
		t.Errorf("DatasetID: got %v, want nil", *bot.DatasetID)
	}
	if bot.ChorusModelID == nil || *bot.ChorusModelID != 3 {
		t.Errorf("ChorusModelID: got %v", bot.ChorusModelID)
	}
}

func TestChatRequestOmitsUnsetOptions(t *testing.T) {
	data, err := json.Marshal(ChatRequest{Message: "hi"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"message":"hi"}` {
		t.Fatalf("got %s", data)
	}
	data, _ = json.Marshal(ChatRequest{Message: "hi", RAGCount: IntPtr(0)})
	if string(data) != `{"message":"hi","rag_count":0}` {
		t.Fatalf("explicit zero rag_count dropped: %s", data)
	}
}

func TestHealthStatusHealthy(t *testing.T) {
	if !(HealthStatus{Status: "healthy"}).Healthy() {
		t.Error("healthy status not recognised")
	}
	if (HealthStatus{Status: "degraded"}).Healthy() {
		t.Error("degraded reported healthy")
	}
}
