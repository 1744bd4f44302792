package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PadelTracker/internal/model"
)

func testSnapshot() *model.MarketData {
	today := time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC)
	mk := func(id, name string, prev, cur int) model.Competitor {
		return model.NewCompetitor(id, name, "", "", []model.PricePoint{
			{Date: today.AddDate(0, 0, -1), Price: prev},
			{Date: today, Price: cur},
		})
	}
	return &model.MarketData{
		ProductName: "Siux Electra ST4 Pro",
		Competitors: []model.Competitor{
			mk("justpadel", "JustPadel", 270, 280),
			mk("decathlon", "Decathlon", 260, 250),
		},
	}
}

func TestFormatMarketReport(t *testing.T) {
	out := FormatMarketReport(testSnapshot(), time.Date(2025, 8, 2, 9, 0, 0, 0, time.UTC))
	assert.Contains(t, out, "<b>Siux Electra ST4 Pro</b> | 2025-08-02")
	assert.Contains(t, out, "Lowest price: €250")
	assert.Contains(t, out, "↓ Decathlon: €250 ⭐")
	assert.Contains(t, out, "↑ JustPadel: €280\n")
	assert.Less(t, strings.Index(out, "Decathlon"), strings.Index(out, "JustPadel"))
}

func TestFormatAnalysis_EscapesHTML(t *testing.T) {
	out := FormatAnalysis(model.AIAnalysisResult{
		Recommendation: model.RecommendationBuy,
		Summary:        "Prices <dropped> & stable.",
		BestDeal:       "Decathlon €250",
	})
	assert.Contains(t, out, "VERDICT: BUY")
	assert.Contains(t, out, "Prices &lt;dropped&gt; &amp; stable.")
	assert.Contains(t, out, "<b>Best Deal:</b> Decathlon €250")
}

func TestTelegramNotifier_Send(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottoken/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("token", "42", "", nil)
	n.APIBase = srv.URL
	require.NoError(t, n.Send(context.Background(), "hello"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "hello", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestTelegramNotifier_SendWithRetryStopsOnContext(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("token", "42", "", nil)
	n.APIBase = srv.URL

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := n.SendWithRetry(ctx, "hello", 3)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.EqualValues(t, 1, calls.Load())
}

func TestTelegramNotifier_PollDispatchesCommands(t *testing.T) {
	var replies []string
	mux := http.NewServeMux()
	mux.HandleFunc("/bottoken/getUpdates", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("offset"))
		_, _ = w.Write([]byte(`{"ok":true,"result":[{"update_id":7,"message":{"text":" /prices "}},{"update_id":8}]}`))
	})
	mux.HandleFunc("/bottoken/sendMessage", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		replies = append(replies, body["text"])
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	n := NewTelegramNotifier("token", "42", "", nil)
	n.APIBase = srv.URL

	var commands []string
	next, err := n.poll(context.Background(), srv.Client(), 7, func(_ context.Context, cmd string) string {
		commands = append(commands, cmd)
		return "reply to " + cmd
	})
	require.NoError(t, err)
	assert.Equal(t, 9, next)
	assert.Equal(t, []string{"/prices"}, commands)
	assert.Equal(t, []string{"reply to /prices"}, replies)
}
