package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/hackgods/clinidesk/internal/api"
	"github.com/hackgods/clinidesk/internal/logger"
	"github.com/hackgods/clinidesk/internal/schedule"
)

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	BookingRatio float64
	MoveRatio    float64
	ReadRatio    float64
	Tokens       []string
	Username     string
	Password     string
}

type eventPool struct {
	mu  sync.RWMutex
	ids map[string][]string // token -> saved event ids
}

func (p *eventPool) add(token, id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids[token] = append(p.ids[token], id)
}

func (p *eventPool) random(token string, rng *rand.Rand) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := p.ids[token]
	if len(ids) == 0 {
		return "", false
	}
	return ids[rng.Intn(len(ids))], true
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, status int, err error) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case err == nil && status < 300:
		atomic.AddInt64(&om.Success, 1)
	case err == nil && status == http.StatusConflict:
		atomic.AddInt64(&om.Conflict, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, lo, hi, p50, p95 time.Duration) {
	om.mu.Lock()
	latencies := slices.Clone(om.Latencies)
	om.mu.Unlock()

	if len(latencies) == 0 {
		return 0, 0, 0, 0, 0
	}
	slices.Sort(latencies)

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	n := len(latencies)
	return sum / time.Duration(n), latencies[0], latencies[n-1], latencies[n*50/100], latencies[min(n*95/100, n-1)]
}

type Metrics struct {
	Booking OperationMetrics
	Move    OperationMetrics
	Events  OperationMetrics
	Stats   OperationMetrics
}

type Simulator struct {
	config  SimConfig
	log     *zap.Logger
	events  *eventPool
	client  *http.Client
	metrics Metrics
}

func main() {
	lg, err := logger.New(getEnv("APP_ENV", "dev"), "info")
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	cfg := loadConfig()
	sim := &Simulator{
		config: cfg,
		log:    lg,
		events: &eventPool{ids: make(map[string][]string)},
		client: &http.Client{Timeout: 10 * time.Second},
	}

	if len(cfg.Tokens) == 0 {
		tok, err := sim.login(context.Background())
		if err != nil {
			lg.Fatal("login failed", zap.Error(err))
		}
		sim.config.Tokens = []string{tok}
	}
	if err := validateConfig(sim.config); err != nil {
		lg.Fatal("invalid config", zap.Error(err))
	}

	lg.Info("simulator starting",
		zap.Duration("duration", cfg.Duration),
		zap.Int("workers", cfg.Workers),
		zap.Int("owners", len(sim.config.Tokens)),
		zap.Float64("booking", cfg.BookingRatio),
		zap.Float64("move", cfg.MoveRatio),
		zap.Float64("read", cfg.ReadRatio),
	)

	sim.Run()
	sim.PrintReport()
}

func loadConfig() SimConfig {
	cfg := SimConfig{
		APIBaseURL:   strings.TrimRight(getEnv("SIM_API_BASE_URL", "http://localhost:8080"), "/"),
		Duration:     getDuration("SIM_DURATION", 30*time.Second),
		Workers:      getInt("SIM_WORKERS", 10),
		BookingRatio: getFloat("SIM_BOOKING_RATIO", 0.3),
		MoveRatio:    getFloat("SIM_MOVE_RATIO", 0.2),
		ReadRatio:    getFloat("SIM_READ_RATIO", 0.5),
		Username:     os.Getenv("SIM_USERNAME"),
		Password:     os.Getenv("SIM_PASSWORD"),
	}
	for _, t := range strings.Split(os.Getenv("SIM_TOKENS"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			cfg.Tokens = append(cfg.Tokens, t)
		}
	}

	total := cfg.BookingRatio + cfg.MoveRatio + cfg.ReadRatio
	if total > 0 {
		cfg.BookingRatio /= total
		cfg.MoveRatio /= total
		cfg.ReadRatio /= total
	}
	return cfg
}

func validateConfig(cfg SimConfig) error {
	if len(cfg.Tokens) == 0 {
		return fmt.Errorf("SIM_TOKENS or SIM_USERNAME/SIM_PASSWORD is required")
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	return nil
}

func (s *Simulator) login(ctx context.Context) (string, error) {
	if s.config.Username == "" {
		return "", fmt.Errorf("no credentials configured")
	}
	var out api.LoginResponse
	status, err := s.call(ctx, http.MethodPost, "/auth/login", "", api.LoginRequest{
		Username: s.config.Username,
		Password: s.config.Password,
	}, &out)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("login responded %d", status)
	}
	return out.AccessToken, nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	s.log.Info("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))
	token := s.config.Tokens[workerID%len(s.config.Tokens)]

	for ctx.Err() == nil {
		r := rng.Float64()
		switch {
		case r < s.config.BookingRatio:
			s.doBooking(ctx, rng, token)
		case r < s.config.BookingRatio+s.config.MoveRatio:
			s.doMove(ctx, rng, token)
		case rng.Intn(2) == 0:
			s.timed(&s.metrics.Events, func() (int, error) {
				return s.call(ctx, http.MethodGet, "/calendar/events", token, nil, nil)
			})
		default:
			s.timed(&s.metrics.Stats, func() (int, error) {
				return s.call(ctx, http.MethodGet, "/calendar/stats", token, nil, nil)
			})
		}
	}
}

// randomSlot picks a quarter hour start within the default work hours over
// the next week.
func randomSlot(rng *rand.Rand, minutes int) schedule.Range {
	now := time.Now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1+rng.Intn(7))
	for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, 1)
	}
	start := day.Add(8*time.Hour + time.Duration(rng.Intn(32))*15*time.Minute)
	return schedule.Range{Start: start, End: start.Add(time.Duration(minutes) * time.Minute)}
}

// doBooking runs the select, fill in and save sequence a user performs in
// the appointment dialog.
func (s *Simulator) doBooking(ctx context.Context, rng *rand.Rand, token string) {
	minutes := schedule.DurationOptions[rng.Intn(len(schedule.DurationOptions))]
	patient := strconv.Itoa(1 + rng.Intn(5))
	payer := schedule.PrivatePayerValue
	if rng.Intn(2) == 0 {
		payer = strconv.Itoa(1 + rng.Intn(4))
	}

	start := time.Now()
	status, err := s.call(ctx, http.MethodPost, "/calendar/select", token, randomSlot(rng, minutes), nil)
	if err == nil && status == http.StatusOK {
		status, err = s.call(ctx, http.MethodPatch, "/editor", token, schedule.EditorPatch{
			PatientID: &patient,
			Payer:     &payer,
		}, nil)
	}
	if err == nil && status == http.StatusOK {
		var saved schedule.Event
		status, err = s.call(ctx, http.MethodPost, "/editor/save", token, nil, &saved)
		if err == nil && status == http.StatusOK {
			s.events.add(token, saved.ID.String())
		}
	}
	s.metrics.Booking.Record(time.Since(start), status, err)
}

func (s *Simulator) doMove(ctx context.Context, rng *rand.Rand, token string) {
	id, ok := s.events.random(token, rng)
	if !ok {
		return
	}
	minutes := schedule.DurationOptions[rng.Intn(len(schedule.DurationOptions))]
	s.timed(&s.metrics.Move, func() (int, error) {
		return s.call(ctx, http.MethodPost, "/calendar/events/"+id+"/drop", token, randomSlot(rng, minutes), nil)
	})
}

func (s *Simulator) timed(om *OperationMetrics, fn func() (int, error)) {
	start := time.Now()
	status, err := fn()
	om.Record(time.Since(start), status, err)
}

func (s *Simulator) call(ctx context.Context, method, path, token string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.config.APIBaseURL+path, body)
	if err != nil {
		return 0, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
		return resp.StatusCode, nil
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Printf("Owners: %d\n", len(s.config.Tokens))
	fmt.Println()

	printOperationReport("Booking", &s.metrics.Booking)
	printOperationReport("Move", &s.metrics.Move)
	printOperationReport("List events", &s.metrics.Events)
	printOperationReport("Stats", &s.metrics.Stats)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	failed := atomic.LoadInt64(&om.Error)

	avg, lo, hi, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if conflict > 0 {
		fmt.Printf("  Busy: %d (%.1f%%)\n", conflict, float64(conflict)/float64(total)*100)
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, float64(failed)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), lo.Round(time.Millisecond), hi.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
