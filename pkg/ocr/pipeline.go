package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	pdfcpu "github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/sync/errgroup"

	"docuchat/pkg/config"
	"docuchat/pkg/logger"
	"docuchat/pkg/types"
	"docuchat/pkg/utils"
)

// Event is one page's progress notification. Events are delivered in page
// order: page N's event never arrives before page N-1's.
type Event struct {
	Job    uuid.UUID
	Page   int
	Total  int
	Chars  int
	Failed bool
}

// ProgressFunc receives ordered per-page progress events.
type ProgressFunc func(Event)

// Pipeline extracts text from scanned PDFs: rasterize every page, recognize
// each page image, and stream per-page results. One failed page yields an
// empty placeholder instead of failing the document; only a job where every
// page fails is an error. Cancellation is cooperative between pages, and the
// caller stores nothing for a cancelled job.
type Pipeline struct {
	engine      Engine
	rasterizer  Rasterizer
	concurrency int
	pageRetries int
	progress    ProgressFunc
	logger      *logger.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithProgress registers an ordered per-page progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) { p.progress = fn }
}

// WithRasterizer overrides the pdftoppm rasterizer.
func WithRasterizer(r Rasterizer) Option {
	return func(p *Pipeline) { p.rasterizer = r }
}

// WithEngine overrides the configured recognition engine.
func WithEngine(e Engine) Option {
	return func(p *Pipeline) { p.engine = e }
}

// NewPipeline builds the OCR pipeline from configuration.
func NewPipeline(cfg *config.OCRConfig, log *logger.Logger, opts ...Option) (*Pipeline, error) {
	engine, err := NewEngine(cfg, log)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		engine:      engine,
		rasterizer:  NewPopplerRasterizer(cfg.PdftoppmPath, cfg.DPI, execRunner{logger: log}, log),
		concurrency: cfg.MaxConcurrency,
		pageRetries: cfg.PageRetries,
		logger:      log,
	}
	if p.concurrency < 1 {
		p.concurrency = 1
	}
	if p.pageRetries < 1 {
		p.pageRetries = 1
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Extract OCRs every page of the PDF. Pages are recognized in parallel up to
// the configured concurrency, but progress events and the returned slice
// preserve page order.
func (p *Pipeline) Extract(ctx context.Context, pdfPath string) ([]types.PageText, error) {
	jobID := uuid.New()

	if count, err := pdfcpu.PageCountFile(pdfPath); err == nil {
		p.logger.Progress("🔍", "Starting OCR job %s: %d pages expected", jobID, count)
	} else {
		p.logger.Progress("🔍", "Starting OCR job %s", jobID)
	}

	pagesDir, err := os.MkdirTemp("", "docuchat-ocr-*")
	if err != nil {
		return nil, utils.NewIOError("failed to create page image directory", err)
	}
	defer func() {
		if err := os.RemoveAll(pagesDir); err != nil {
			p.logger.Warn("Failed to remove page image directory %s: %v", pagesDir, err)
		}
	}()

	images, err := p.rasterizer.Rasterize(ctx, pdfPath, pagesDir)
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeOCR, "extraction job failed during rasterization")
	}

	total := len(images)
	pages := make([]types.PageText, total)
	emitter := newOrderedEmitter(total, jobID, p.progress)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, img := range images {
		g.Go(func() error {
			// Cooperative cancellation boundary between pages.
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			text, pageErr := p.recognizePage(gctx, img)
			if pageErr != nil {
				if errors.Is(pageErr, context.Canceled) || errors.Is(pageErr, context.DeadlineExceeded) {
					return pageErr
				}
				// Per-page failure: record a placeholder, keep the document.
				p.logger.Warn("Page %d recognition failed: %v", i+1, pageErr)
				pages[i] = types.PageText{Number: i + 1, Failed: true}
			} else {
				pages[i] = types.PageText{Number: i + 1, Text: text}
			}
			emitter.complete(i, pages[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	failed := 0
	for _, page := range pages {
		if page.Failed {
			failed++
		}
	}
	if failed == total {
		return nil, utils.NewOCRError(
			fmt.Sprintf("extraction job failed: all %d pages failed recognition", total), nil)
	}

	p.logger.Progress("✅", "OCR job %s finished: %d/%d pages extracted with %s",
		jobID, total-failed, total, p.engine.Name())
	return pages, nil
}

// recognizePage runs recognition with per-page retries, short of context
// cancellation which always stops the job.
func (p *Pipeline) recognizePage(ctx context.Context, imagePath string) (string, error) {
	var text string
	err := utils.WithRetry(func() error {
		out, err := p.engine.Recognize(ctx, imagePath)
		if err != nil {
			return err
		}
		text = strings.TrimSpace(out)
		return nil
	}, p.pageRetries)
	return text, err
}

// orderedEmitter buffers out-of-order page completions and fires the
// progress callback strictly by page index.
type orderedEmitter struct {
	mu       sync.Mutex
	buffered []*Event
	next     int
	total    int
	job      uuid.UUID
	fn       ProgressFunc
}

func newOrderedEmitter(total int, job uuid.UUID, fn ProgressFunc) *orderedEmitter {
	return &orderedEmitter{
		buffered: make([]*Event, total),
		total:    total,
		job:      job,
		fn:       fn,
	}
}

func (e *orderedEmitter) complete(index int, page types.PageText) {
	if e.fn == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.buffered[index] = &Event{
		Job:    e.job,
		Page:   index + 1,
		Total:  e.total,
		Chars:  len(page.Text),
		Failed: page.Failed,
	}

	// Flush the contiguous prefix under the lock so no later page's event
	// can overtake an earlier one.
	for e.next < e.total && e.buffered[e.next] != nil {
		e.fn(*e.buffered[e.next])
		e.buffered[e.next] = nil
		e.next++
	}
}
