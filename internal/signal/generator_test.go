package signal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Alias1177/fxsignal/internal/dedup"
	"github.com/Alias1177/fxsignal/internal/fault"
	"github.com/Alias1177/fxsignal/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	wednesday = time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)
	saturday  = time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
)

type fakeCandles struct {
	mu      sync.Mutex
	calls   int
	fail    map[string]error
	block   map[string]bool
	history map[string][]models.Candle
	end     time.Time
}

func (f *fakeCandles) FetchCandles(ctx context.Context, symbol, timeframe string, count int) ([]models.Candle, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.block[symbol] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := f.fail[symbol]; err != nil {
		return nil, err
	}
	if h, ok := f.history[symbol]; ok {
		return h, nil
	}
	return series(count, f.end, models.TimeframeDuration(timeframe)), nil
}

func (f *fakeCandles) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// series is a gently oscillating market ending at end
func series(n int, end time.Time, step time.Duration) []models.Candle {
	out := make([]models.Candle, n)
	for i := range out {
		price := 1.1 + 0.002*math.Sin(float64(i)/5) + 0.00001*float64(i)
		out[i] = models.Candle{
			Timestamp: end.Add(-time.Duration(n-1-i) * step),
			Open:      price - 0.0002,
			High:      price + 0.0005,
			Low:       price - 0.0005,
			Close:     price,
		}
	}
	return out
}

type fakePredictor struct {
	pred models.MLPrediction
	err  error
}

func (f fakePredictor) Predict(context.Context, string, []float64) (models.MLPrediction, error) {
	return f.pred, f.err
}

type fakeSentiment struct {
	score models.SentimentScore
	err   error
}

func (f fakeSentiment) Sentiment(context.Context, string) (models.SentimentScore, error) {
	return f.score, f.err
}

type fakeNews struct {
	impact models.NewsImpactScore
	err    error
}

func (f fakeNews) NewsImpact(context.Context, []string) (models.NewsImpactScore, error) {
	return f.impact, f.err
}

type fakeStore struct {
	mu      sync.Mutex
	signals []models.TradingSignal
	results map[string]string
	saveErr error
}

func (f *fakeStore) Save(_ context.Context, s *models.TradingSignal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.signals = append(f.signals, *s)
	return nil
}

func (f *fakeStore) Recent(_ context.Context, limit int) ([]models.TradingSignal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]models.TradingSignal{}, f.signals...)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) InRange(_ context.Context, start, end time.Time) ([]models.TradingSignal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TradingSignal
	for _, s := range f.signals {
		if !s.Timestamp.Before(start) && s.Timestamp.Before(end) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateResult(_ context.Context, id, result string, _ float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.results == nil {
		f.results = make(map[string]string)
	}
	f.results[id] = result
	return nil
}

func (f *fakeStore) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.signals)
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []models.TradingSignal
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, s models.TradingSignal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, s)
	return f.err
}

type fixture struct {
	now      time.Time
	candles  *fakeCandles
	store    *fakeStore
	notifier *fakeNotifier
	deps     Dependencies
	opts     Options
}

// newFixture wires fakes whose ML and sentiment evidence alone is enough
// for a BUY signal
func newFixture(now time.Time) *fixture {
	f := &fixture{
		now:      now,
		candles:  &fakeCandles{end: now},
		store:    &fakeStore{},
		notifier: &fakeNotifier{},
	}
	f.deps = Dependencies{
		Candles:   f.candles,
		Predictor: fakePredictor{pred: models.MLPrediction{Direction: 1, Confidence: 80}},
		Sentiment: fakeSentiment{score: models.SentimentScore{Score: 0.5}},
		News:      fakeNews{impact: models.NeutralNews()},
		Store:     f.store,
		Notifier:  f.notifier,
		Clock:     func() time.Time { return f.now },
	}
	f.opts = Options{
		ForexPairs:       []string{"EURUSD", "GBPUSD", "USDJPY"},
		CryptoPairs:      []string{"BTCUSDT", "ETHUSDT"},
		Timeframes:       []string{"15min", "1h", "4h"},
		ScanTimeframes:   []string{"1h", "4h"},
		MinConfidence:    30,
		HighConfidence:   80,
		TopSignals:       10,
		Concurrency:      4,
		ScanTimeout:      5 * time.Second,
		BacktestInterval: "1h",
	}
	return f
}

func (f *fixture) generator() *Generator {
	return New(f.deps, f.opts)
}

func TestGenerateSignal(t *testing.T) {
	f := newFixture(wednesday)
	g := f.generator()

	sig, err := g.GenerateSignal(context.Background(), "EUR/USD", "1h")
	if err != nil {
		t.Fatalf("GenerateSignal() error = %v", err)
	}
	if sig == nil {
		t.Fatal("GenerateSignal() returned no signal")
	}

	if sig.Symbol != "EURUSD" || sig.Timeframe != "1h" {
		t.Errorf("unit = %s/%s, want EURUSD/1h", sig.Symbol, sig.Timeframe)
	}
	if sig.Direction != models.DirectionBuy {
		t.Errorf("Direction = %v, want BUY", sig.Direction)
	}
	if sig.MarketType != models.MarketForex {
		t.Errorf("MarketType = %v, want forex", sig.MarketType)
	}
	if sig.Confidence < 30 || sig.Confidence > 95 {
		t.Errorf("Confidence = %d, out of range", sig.Confidence)
	}
	if !(sig.TPPrice > sig.EntryPrice && sig.EntryPrice > sig.SLPrice) {
		t.Errorf("levels out of order: tp=%v entry=%v sl=%v", sig.TPPrice, sig.EntryPrice, sig.SLPrice)
	}
	if !sig.Timestamp.Equal(wednesday) {
		t.Errorf("Timestamp = %v, want %v", sig.Timestamp, wednesday)
	}
	if sig.ID == "" {
		t.Error("ID is empty")
	}
	if f.store.Len() != 1 {
		t.Errorf("stored %d signals, want 1", f.store.Len())
	}
	if len(f.notifier.sent) != 1 {
		t.Errorf("sent %d notifications, want 1", len(f.notifier.sent))
	}
}

func TestGenerateSignalSessionClosed(t *testing.T) {
	f := newFixture(saturday)
	g := f.generator()

	sig, err := g.GenerateSignal(context.Background(), "EURUSD", "1h")
	if err != nil || sig != nil {
		t.Fatalf("GenerateSignal() = %v, %v; want nil, nil", sig, err)
	}
	if f.candles.Calls() != 0 {
		t.Errorf("fetched candles %d times on a closed session", f.candles.Calls())
	}
	if f.store.Len() != 0 || len(f.notifier.sent) != 0 {
		t.Error("closed session had side effects")
	}

	// crypto trades through the weekend
	sig, err = g.GenerateSignal(context.Background(), "BTCUSDT", "1h")
	if err != nil {
		t.Fatalf("GenerateSignal(BTCUSDT) error = %v", err)
	}
	if sig == nil || sig.MarketType != models.MarketCrypto {
		t.Fatalf("GenerateSignal(BTCUSDT) = %+v, want crypto signal", sig)
	}
}

func TestGenerateSignalInvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		symbol    string
		timeframe string
	}{
		{"unknown symbol", "XAUUSD", "1h"},
		{"empty symbol", "", "1h"},
		{"unknown timeframe", "EURUSD", "3h"},
		{"unconfigured timeframe", "EURUSD", "1day"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(wednesday)
			sig, err := f.generator().GenerateSignal(context.Background(), tt.symbol, tt.timeframe)
			if sig != nil {
				t.Errorf("GenerateSignal() = %+v, want nil", sig)
			}
			if fault.KindOf(err) != fault.Validation {
				t.Errorf("GenerateSignal() error = %v, want validation fault", err)
			}
			if f.candles.Calls() != 0 {
				t.Error("invalid input reached the data source")
			}
		})
	}
}

func TestGenerateSignalDataUnavailable(t *testing.T) {
	f := newFixture(wednesday)
	f.candles.fail = map[string]error{"EURUSD": errors.New("upstream 503")}

	sig, err := f.generator().GenerateSignal(context.Background(), "EURUSD", "1h")
	if sig != nil {
		t.Errorf("GenerateSignal() = %+v, want nil", sig)
	}
	if !errors.Is(err, fault.ErrDataUnavailable) {
		t.Errorf("GenerateSignal() error = %v, want data unavailable", err)
	}
	if f.store.Len() != 0 {
		t.Error("signal stored without data")
	}
}

func TestGenerateSignalInsufficientCandles(t *testing.T) {
	f := newFixture(wednesday)
	f.candles.history = map[string][]models.Candle{
		"EURUSD": series(10, wednesday, time.Hour),
	}

	_, err := f.generator().GenerateSignal(context.Background(), "EURUSD", "1h")
	if !errors.Is(err, fault.ErrDataUnavailable) {
		t.Errorf("GenerateSignal() error = %v, want data unavailable", err)
	}
}

func TestGenerateSignalDegradedEvidence(t *testing.T) {
	f := newFixture(wednesday)
	f.deps.Predictor = fakePredictor{err: errors.New("model crashed")}
	f.deps.Sentiment = fakeSentiment{err: errors.New("timeout")}
	f.deps.News = fakeNews{err: errors.New("quota")}

	// neutral evidence and a weak technical verdict cannot carry a signal
	sig, err := f.generator().GenerateSignal(context.Background(), "EURUSD", "1h")
	if err != nil {
		t.Fatalf("GenerateSignal() error = %v, want degraded sources to be absorbed", err)
	}
	if sig != nil {
		t.Errorf("GenerateSignal() = %+v, want rejection", sig)
	}
}

func TestGenerateSignalMinConfidence(t *testing.T) {
	f := newFixture(wednesday)
	f.opts.MinConfidence = 96

	sig, err := f.generator().GenerateSignal(context.Background(), "EURUSD", "1h")
	if err != nil || sig != nil {
		t.Fatalf("GenerateSignal() = %v, %v; want nil, nil", sig, err)
	}
	if f.store.Len() != 0 {
		t.Error("low confidence signal stored")
	}
}

func TestGenerateSignalDeduplicates(t *testing.T) {
	f := newFixture(wednesday)
	g := f.generator()
	ctx := context.Background()

	first, err := g.GenerateSignal(ctx, "EURUSD", "1h")
	if err != nil || first == nil {
		t.Fatalf("first GenerateSignal() = %v, %v", first, err)
	}
	second, err := g.GenerateSignal(ctx, "EURUSD", "1h")
	if err != nil || second != nil {
		t.Fatalf("second GenerateSignal() = %v, %v; want nil, nil", second, err)
	}

	// a different timeframe is a different unit
	other, err := g.GenerateSignal(ctx, "EURUSD", "4h")
	if err != nil || other == nil {
		t.Fatalf("GenerateSignal(4h) = %v, %v", other, err)
	}
	if f.store.Len() != 2 {
		t.Errorf("stored %d signals, want 2", f.store.Len())
	}
}

func TestGenerateSignalConcurrentSingleEmission(t *testing.T) {
	f := newFixture(wednesday)
	g := f.generator()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = g.GenerateSignal(context.Background(), "GBPUSD", "1h")
		}()
	}
	wg.Wait()

	if f.store.Len() != 1 {
		t.Errorf("stored %d signals, want exactly 1", f.store.Len())
	}
}

func TestGenerateSignalSaveFailureReleasesKey(t *testing.T) {
	f := newFixture(wednesday)
	f.store.saveErr = errors.New("db down")
	g := f.generator()

	if _, err := g.GenerateSignal(context.Background(), "EURUSD", "1h"); err == nil {
		t.Fatal("GenerateSignal() error = nil, want save failure")
	}
	if len(f.notifier.sent) != 0 {
		t.Error("unsaved signal was delivered")
	}

	f.store.mu.Lock()
	f.store.saveErr = nil
	f.store.mu.Unlock()

	sig, err := g.GenerateSignal(context.Background(), "EURUSD", "1h")
	if err != nil || sig == nil {
		t.Fatalf("retry GenerateSignal() = %v, %v; want a signal", sig, err)
	}
}

// recordingDedup notes the context each Release sees and counts prunes
type recordingDedup struct {
	*dedup.Memory

	mu         sync.Mutex
	released   int
	releaseErr error
	prunes     int
}

func (r *recordingDedup) Release(ctx context.Context, symbol, timeframe string) error {
	r.mu.Lock()
	r.released++
	r.releaseErr = ctx.Err()
	r.mu.Unlock()
	return r.Memory.Release(ctx, symbol, timeframe)
}

func (r *recordingDedup) Prune(now time.Time) int {
	r.mu.Lock()
	r.prunes++
	r.mu.Unlock()
	return r.Memory.Prune(now)
}

// cancellingStore cancels the caller's context before failing the save
type cancellingStore struct {
	*fakeStore
	cancel context.CancelFunc
}

func (s *cancellingStore) Save(_ context.Context, _ *models.TradingSignal) error {
	s.cancel()
	return context.Canceled
}

func TestGenerateSignalReleasesKeyAfterCancel(t *testing.T) {
	f := newFixture(wednesday)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &recordingDedup{Memory: dedup.NewMemory(dedup.DefaultWindow)}
	f.deps.Dedup = rec
	f.deps.Store = &cancellingStore{fakeStore: f.store, cancel: cancel}
	g := f.generator()

	if _, err := g.GenerateSignal(ctx, "EURUSD", "1h"); err == nil {
		t.Fatal("GenerateSignal() error = nil, want save failure")
	}
	if rec.released != 1 {
		t.Fatalf("Release called %d times, want 1", rec.released)
	}
	if rec.releaseErr != nil {
		t.Errorf("Release context error = %v, want a live context", rec.releaseErr)
	}
	if ok, _ := rec.Reserve(context.Background(), "EURUSD", "1h", wednesday); !ok {
		t.Error("key still claimed after failed save")
	}
}

func TestGenerateSignalLogsRiskAndSessions(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	f := newFixture(wednesday)
	sig, err := f.generator().GenerateSignal(context.Background(), "EURUSD", "1h")
	if err != nil || sig == nil {
		t.Fatalf("GenerateSignal() = %v, %v; want a signal", sig, err)
	}

	var entry struct {
		Message    string   `json:"message"`
		RiskReward float64  `json:"risk_reward"`
		Sessions   []string `json:"sessions"`
	}
	found := false
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if err := json.Unmarshal(line, &entry); err == nil && entry.Message == "Signal generated" {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("no \"Signal generated\" entry in log:\n%s", buf.String())
	}
	if entry.RiskReward <= 0 {
		t.Errorf("risk_reward = %v, want > 0", entry.RiskReward)
	}
	if len(entry.Sessions) != 1 || entry.Sessions[0] != "london" {
		t.Errorf("sessions = %v, want [london]", entry.Sessions)
	}
}

func TestGenerateSignalNotifyFailureKeepsSignal(t *testing.T) {
	f := newFixture(wednesday)
	f.notifier.err = errors.New("telegram down")

	sig, err := f.generator().GenerateSignal(context.Background(), "EURUSD", "1h")
	if err != nil || sig == nil {
		t.Fatalf("GenerateSignal() = %v, %v; want a signal", sig, err)
	}
	if f.store.Len() != 1 {
		t.Errorf("stored %d signals, want 1", f.store.Len())
	}
}

func TestScanAllMarkets(t *testing.T) {
	f := newFixture(wednesday)
	f.candles.fail = map[string]error{"GBPUSD": errors.New("upstream 500")}
	f.opts.TopSignals = 3
	g := f.generator()

	res := g.ScanAllMarkets(context.Background(), []string{"EURUSD", "GBPUSD", "BTCUSDT"}, []string{"1h", "4h"})

	if res.TotalScanned != 6 {
		t.Errorf("TotalScanned = %d, want 6", res.TotalScanned)
	}
	if res.Failed != 2 {
		t.Errorf("Failed = %d, want 2", res.Failed)
	}
	if res.TimedOut {
		t.Error("TimedOut = true")
	}
	if res.ForexCount != 2 || res.CryptoCount != 2 {
		t.Errorf("forex/crypto = %d/%d, want 2/2", res.ForexCount, res.CryptoCount)
	}
	if len(res.TopSignals) != 3 {
		t.Fatalf("TopSignals has %d entries, want 3", len(res.TopSignals))
	}
	for i := 1; i < len(res.TopSignals); i++ {
		if res.TopSignals[i-1].Confidence < res.TopSignals[i].Confidence {
			t.Errorf("TopSignals not sorted by confidence: %d before %d",
				res.TopSignals[i-1].Confidence, res.TopSignals[i].Confidence)
		}
	}
	if !res.ScannedAt.Equal(wednesday) {
		t.Errorf("ScannedAt = %v, want %v", res.ScannedAt, wednesday)
	}
	if f.store.Len() != 4 {
		t.Errorf("stored %d signals, want 4", f.store.Len())
	}
}

func TestScanAllMarketsPrunesDedup(t *testing.T) {
	f := newFixture(wednesday)
	rec := &recordingDedup{Memory: dedup.NewMemory(5 * time.Minute)}
	f.deps.Dedup = rec
	g := f.generator()

	g.ScanAllMarkets(context.Background(), []string{"EURUSD"}, []string{"1h"})
	if n := rec.Prune(wednesday.Add(10 * time.Minute)); n != 1 {
		t.Errorf("Prune() after first scan = %d, want the 1 emitted entry", n)
	}

	rec.mu.Lock()
	rec.prunes = 0
	rec.mu.Unlock()
	f.now = wednesday.Add(time.Hour)
	g.ScanAllMarkets(context.Background(), []string{"EURUSD"}, []string{"1h"})
	if rec.prunes != 1 {
		t.Errorf("scan pruned %d times, want 1", rec.prunes)
	}
}

func TestScanAllMarketsDefaults(t *testing.T) {
	f := newFixture(saturday)
	res := f.generator().ScanAllMarkets(context.Background(), nil, nil)

	// five pairs over two scan timeframes; only crypto trades on Saturday
	if res.TotalScanned != 10 {
		t.Errorf("TotalScanned = %d, want 10", res.TotalScanned)
	}
	if res.ForexCount != 0 || res.CryptoCount != 4 {
		t.Errorf("forex/crypto = %d/%d, want 0/4", res.ForexCount, res.CryptoCount)
	}
}

func TestScanAllMarketsTimeout(t *testing.T) {
	f := newFixture(wednesday)
	f.candles.block = map[string]bool{"EURUSD": true}
	f.opts.ScanTimeout = 50 * time.Millisecond
	f.opts.Concurrency = 2

	res := f.generator().ScanAllMarkets(context.Background(), []string{"EURUSD", "BTCUSDT"}, []string{"1h"})

	if !res.TimedOut {
		t.Error("TimedOut = false, want true")
	}
	if len(res.TopSignals) != 1 || res.TopSignals[0].Symbol != "BTCUSDT" {
		t.Errorf("TopSignals = %+v, want the BTCUSDT signal", res.TopSignals)
	}
}

func TestBacktest(t *testing.T) {
	now := wednesday
	f := newFixture(now)

	buy := models.TradingSignal{
		ID: "buy", Symbol: "EURUSD", Direction: models.DirectionBuy, Timeframe: "1h",
		EntryPrice: 1.1, TPPrice: 1.105, SLPrice: 1.097, Confidence: 70,
		Timestamp: now.Add(-48 * time.Hour), MarketType: models.MarketForex, Status: models.StatusActive,
	}
	sell := models.TradingSignal{
		ID: "sell", Symbol: "GBPUSD", Direction: models.DirectionSell, Timeframe: "1h",
		EntryPrice: 1.25, TPPrice: 1.24, SLPrice: 1.255, Confidence: 60,
		Timestamp: now.Add(-24 * time.Hour), MarketType: models.MarketForex, Status: models.StatusActive,
	}
	fresh := models.TradingSignal{
		ID: "fresh", Symbol: "USDJPY", Direction: models.DirectionBuy, Timeframe: "1h",
		EntryPrice: 150, TPPrice: 151, SLPrice: 149, Confidence: 50,
		Timestamp: now.Add(-time.Hour), MarketType: models.MarketForex, Status: models.StatusActive,
	}
	old := buy
	old.ID, old.Timestamp = "old", now.Add(-40*24*time.Hour)
	f.store.signals = []models.TradingSignal{old, buy, sell, fresh}

	f.candles.history = map[string][]models.Candle{
		"EURUSD": {
			{Timestamp: now.Add(-49 * time.Hour), High: 1.2, Low: 1.0, Close: 1.1},
			{Timestamp: now.Add(-47 * time.Hour), High: 1.103, Low: 1.099, Close: 1.101},
			{Timestamp: now.Add(-46 * time.Hour), High: 1.106, Low: 1.100, Close: 1.104},
		},
		"GBPUSD": {
			{Timestamp: now.Add(-23 * time.Hour), High: 1.256, Low: 1.249, Close: 1.254},
		},
		"USDJPY": {
			{Timestamp: now.Add(-2 * time.Hour), High: 150.5, Low: 149.5, Close: 150},
		},
	}

	sum, err := f.generator().Backtest(context.Background(), 30)
	if err != nil {
		t.Fatalf("Backtest() error = %v", err)
	}

	if sum.TotalSignals != 3 {
		t.Errorf("TotalSignals = %d, want 3", sum.TotalSignals)
	}
	if sum.Evaluated != 2 {
		t.Errorf("Evaluated = %d, want 2", sum.Evaluated)
	}
	if sum.SuccessfulSignals != 1 || sum.TPHits != 1 || sum.SLHits != 1 {
		t.Errorf("successful/tp/sl = %d/%d/%d, want 1/1/1", sum.SuccessfulSignals, sum.TPHits, sum.SLHits)
	}
	if sum.Accuracy != 33.33 {
		t.Errorf("Accuracy = %v, want 33.33", sum.Accuracy)
	}
	if sum.BestSignalID != "buy" || sum.WorstSignalID != "sell" {
		t.Errorf("best/worst = %s/%s, want buy/sell", sum.BestSignalID, sum.WorstSignalID)
	}

	want := map[string]string{"buy": models.ResultWin, "sell": models.ResultLoss}
	if len(f.store.results) != len(want) {
		t.Errorf("results written = %v, want %v", f.store.results, want)
	}
	for id, r := range want {
		if f.store.results[id] != r {
			t.Errorf("result[%s] = %q, want %q", id, f.store.results[id], r)
		}
	}
}

func TestBacktestInvalidDays(t *testing.T) {
	f := newFixture(wednesday)
	_, err := f.generator().Backtest(context.Background(), 0)
	if fault.KindOf(err) != fault.Validation {
		t.Errorf("Backtest(0) error = %v, want validation fault", err)
	}
}

func TestPerformanceStats(t *testing.T) {
	f := newFixture(wednesday)
	g := f.generator()
	ctx := context.Background()

	for _, unit := range [][2]string{{"EURUSD", "1h"}, {"EURUSD", "4h"}, {"BTCUSDT", "1h"}} {
		if sig, err := g.GenerateSignal(ctx, unit[0], unit[1]); err != nil || sig == nil {
			t.Fatalf("GenerateSignal(%v) = %v, %v", unit, sig, err)
		}
	}

	f.now = f.now.Add(time.Minute)
	st, err := g.PerformanceStats(ctx, 7)
	if err != nil {
		t.Fatalf("PerformanceStats() error = %v", err)
	}
	if st.TotalSignals != 3 {
		t.Errorf("TotalSignals = %d, want 3", st.TotalSignals)
	}
	if st.SymbolBreakdown["EURUSD"] != 2 || st.TimeframeBreakdown["1h"] != 2 {
		t.Errorf("breakdowns = %v / %v", st.SymbolBreakdown, st.TimeframeBreakdown)
	}

	recent, err := g.RecentSignals(ctx, 2)
	if err != nil || len(recent) != 2 {
		t.Errorf("RecentSignals(2) = %d signals, %v", len(recent), err)
	}
}
