// Package sender runs bot work off the update goroutines. Jobs sharing a key
// run one after another in enqueue order; different keys run in parallel.
package sender

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"regexp"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/pqbot/core/logger"
	"github.com/m3rciful/pqbot/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

var (
	// ErrQueueClosed is returned when enqueue is attempted after Close.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the partition queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram sender: queue full")

	tokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)
)

// Options controls the dispatcher.
type Options struct {
	// QueueSize is the total number of pending jobs, split across workers.
	QueueSize int
	// Workers is the number of partitions, each served by one goroutine.
	Workers int
	// MaxDuration bounds the context handed to a job; slower jobs are reported.
	MaxDuration time.Duration
}

type job struct {
	ctx    context.Context
	key    int64
	action string
	run    func(ctx context.Context) error
}

// Dispatcher executes jobs on a fixed set of partitioned workers.
type Dispatcher struct {
	opts   Options
	queues []chan job
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	errs   atomic.Uint64
}

// NewDispatcher starts the workers, filling zero options with defaults.
func NewDispatcher(opts Options) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = 30 * time.Second
	}
	perWorker := max(opts.QueueSize/opts.Workers, 1)

	d := &Dispatcher{opts: opts, queues: make([]chan job, opts.Workers)}
	d.wg.Add(opts.Workers)
	for i := range d.queues {
		d.queues[i] = make(chan job, perWorker)
		go d.worker(i, d.queues[i])
	}
	return d
}

// Partition reports which worker serves key.
func (d *Dispatcher) Partition(key int64) int {
	p := key % int64(len(d.queues))
	if p < 0 {
		p = -p
	}
	return int(p)
}

// Enqueue schedules run on the partition of key. It never blocks.
func (d *Dispatcher) Enqueue(ctx context.Context, key int64, action string, run func(ctx context.Context) error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.queues[d.Partition(key)] <- job{ctx: ctx, key: key, action: action, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// ErrorCount returns the number of failed jobs.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.errs.Load()
}

// Close stops accepting jobs and waits until queued ones are done.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, q := range d.queues {
		close(q)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) worker(id int, jobs <-chan job) {
	defer d.wg.Done()
	for j := range jobs {
		d.handleJob(id, j)
	}
}

func (d *Dispatcher) handleJob(worker int, j job) {
	ctx, cancel := context.WithTimeout(j.ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	err := runSafely(ctx, j)
	elapsed := time.Since(start)

	attrs := []slog.Attr{
		slog.String("action", j.action),
		slog.Int("worker", worker),
		slog.Duration("duration", logger.RoundMS(elapsed)),
	}
	if elapsed > d.opts.MaxDuration {
		logger.Warn(j.ctx, logger.CompDispatcher, "job.slow", attrs...)
	}
	if err == nil {
		logger.Debug(j.ctx, logger.CompDispatcher, "job.done", attrs...)
		return
	}

	d.errs.Add(1)
	logger.Error(j.ctx, logger.CompDispatcher, "job.fail", append(attrs,
		slog.String("err", SanitizeError(err)),
		slog.String("err_code", ClassifyError(err)),
		slog.Bool("retryable", netutil.ShouldRetry(err)),
	)...)
}

func runSafely(ctx context.Context, j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(j.ctx, logger.CompDispatcher, "job.panic",
				slog.String("action", j.action),
				slog.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return j.run(ctx)
}

// ClassifyError maps an error to a short kind used in logs.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "cancelled"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return "timeout"
		}
		return "dns"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return "timeout"
		}
		if opErr.Op == "dial" {
			return "dial"
		}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return "timeout"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	var alertErr tls.AlertError
	if errors.As(err, &alertErr) {
		return "tls"
	}

	switch status := httpStatus(err); {
	case status == 429:
		return "http_429"
	case status >= 500:
		return "http_5xx"
	case status >= 400:
		return "http_4xx"
	}
	return "unknown"
}

// SanitizeError renders err with bot tokens redacted.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return tokenRe.ReplaceAllString(err.Error(), "bot<redacted>")
}

// httpStatus extracts the Bot API status code from telebot errors or from a
// trailing "(code)" in the message.
func httpStatus(err error) int {
	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	msg := err.Error()
	open := strings.LastIndex(msg, "(")
	end := strings.LastIndex(msg, ")")
	if open >= 0 && end > open+1 {
		if code, convErr := strconv.Atoi(strings.TrimSpace(msg[open+1 : end])); convErr == nil {
			return code
		}
	}
	return 0
}
