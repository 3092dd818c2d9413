package analysis

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"tokenshield/pkg/gateway"
	"tokenshield/pkg/metrics"
	"tokenshield/pkg/safety"
	"tokenshield/pkg/validation"
)

// DefaultDimensions are fetched by every analysis.
var DefaultDimensions = []safety.Dimension{
	safety.DimensionHoneypot,
	safety.DimensionLiquidity,
	safety.DimensionContract,
	safety.DimensionRisk,
	safety.DimensionMetadata,
	safety.DimensionSocial,
	safety.DimensionDeveloper,
	safety.DimensionVolume,
	safety.DimensionPriceManipulation,
	safety.DimensionCommunity,
}

// ExtendedDimensions adds the due-diligence reads to DefaultDimensions.
var ExtendedDimensions = append(append([]safety.Dimension{}, DefaultDimensions...),
	safety.DimensionAudit,
	safety.DimensionTeam,
	safety.DimensionFunding,
	safety.DimensionCompliance,
	safety.DimensionSentiment,
)

// Fetcher reads one token dimension. *gateway.Client implements it.
type Fetcher interface {
	FetchDimension(ctx context.Context, dim safety.Dimension, address string, opts ...gateway.FetchOption) (safety.SubReport, error)
}

// networked is implemented by fetchers that know their chain.
type networked interface {
	Network() string
}

// Analyzer runs the batch "analyze token" operation.
type Analyzer struct {
	current    func() Fetcher
	dimensions []safety.Dimension
	partial    bool
	logger     *slog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
	newID      func() string
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithPartialResults keeps the successful reports when some dimensions fail
// and lists the failures in Record.FailedDimensions. Without it any single
// failure fails the analysis.
func WithPartialResults() Option {
	return func(a *Analyzer) { a.partial = true }
}

// WithDimensions replaces DefaultDimensions.
func WithDimensions(dims ...safety.Dimension) Option {
	return func(a *Analyzer) {
		if len(dims) > 0 {
			a.dimensions = append([]safety.Dimension(nil), dims...)
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Analyzer) { a.metrics = m }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// New returns an Analyzer reading through f.
func New(f Fetcher, opts ...Option) *Analyzer {
	return newAnalyzer(func() Fetcher { return f }, opts)
}

// NewForSession returns an Analyzer that takes the session's current client
// at the start of each analysis, so one analysis never mixes credentials.
func NewForSession(s *gateway.Session, opts ...Option) *Analyzer {
	return newAnalyzer(func() Fetcher { return s.Client() }, opts)
}

func newAnalyzer(current func() Fetcher, opts []Option) *Analyzer {
	a := &Analyzer{
		current:    current,
		dimensions: DefaultDimensions,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Dimensions returns the dimensions each analysis fetches.
func (a *Analyzer) Dimensions() []safety.Dimension {
	return append([]safety.Dimension(nil), a.dimensions...)
}

// Analyze fetches every configured dimension concurrently, merges the
// results and aggregates them into a new Record.
//
// Errors: *gateway.InvalidInputError when address is blank or malformed (no
// request is made); otherwise the first *gateway.RemoteFetchError. In partial
// mode a fetch error is returned only when every dimension failed.
func (a *Analyzer) Analyze(ctx context.Context, address string, opts ...gateway.FetchOption) (*safety.Record, error) {
	fetcher := a.current()

	network := gateway.DefaultNetwork
	if n, ok := fetcher.(networked); ok {
		network = n.Network()
	}

	res := validation.ValidateAddress(address, validation.RulesForNetwork(network))
	if !res.IsValid {
		return nil, &gateway.InvalidInputError{Field: "token address", Value: address, Reason: res.Summary()}
	}
	address = res.Normalized

	id := a.newID()
	ctx = gateway.ContextWithRequestID(ctx, id)
	logger := a.logger.With("analysis_id", id, "token", address)
	start := time.Now()

	var (
		reports map[safety.Dimension]safety.SubReport
		failed  []safety.Dimension
		err     error
	)
	if a.partial {
		reports, failed, err = a.fetchPartial(ctx, fetcher, address, opts)
	} else {
		reports, err = a.fetchAll(ctx, fetcher, address, opts)
	}
	if err != nil {
		a.metrics.RecordAnalysisFailure()
		logger.ErrorContext(ctx, "token analysis failed", "error", err)
		return nil, err
	}

	record := safety.NewRecord(address, reports, a.now())
	record.AnalysisID = id
	record.Network = network
	record.FailedDimensions = failed

	a.metrics.RecordAnalysis(record.Level.String(), record.OverallScore)
	logger.InfoContext(ctx, "token analysis complete",
		"score", record.OverallScore,
		"level", record.Level,
		"contributors", len(record.Contributors),
		"failed", len(failed),
		"duration", time.Since(start))
	return record, nil
}

// fetchAll cancels the remaining requests on the first failure and returns it.
func (a *Analyzer) fetchAll(ctx context.Context, f Fetcher, address string, opts []gateway.FetchOption) (map[safety.Dimension]safety.SubReport, error) {
	results := make([]safety.SubReport, len(a.dimensions))

	g, gctx := errgroup.WithContext(ctx)
	for i, dim := range a.dimensions {
		g.Go(func() error {
			r, err := f.FetchDimension(gctx, dim, address, opts...)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reports := make(map[safety.Dimension]safety.SubReport, len(results))
	for i, dim := range a.dimensions {
		reports[dim] = results[i]
	}
	return reports, nil
}

// fetchPartial lets every request finish and keeps what succeeded.
func (a *Analyzer) fetchPartial(ctx context.Context, f Fetcher, address string, opts []gateway.FetchOption) (map[safety.Dimension]safety.SubReport, []safety.Dimension, error) {
	results := make([]safety.SubReport, len(a.dimensions))
	errs := make([]error, len(a.dimensions))

	var g errgroup.Group
	for i, dim := range a.dimensions {
		g.Go(func() error {
			results[i], errs[i] = f.FetchDimension(ctx, dim, address, opts...)
			return nil
		})
	}
	_ = g.Wait() // errors captured per slot

	reports := make(map[safety.Dimension]safety.SubReport, len(results))
	var (
		failed   []safety.Dimension
		firstErr error
	)
	for i, dim := range a.dimensions {
		if errs[i] != nil {
			a.logger.WarnContext(ctx, "dimension fetch failed", "dimension", dim, "error", errs[i])
			failed = append(failed, dim)
			if firstErr == nil {
				firstErr = errs[i]
			}
			continue
		}
		reports[dim] = results[i]
	}
	if len(reports) == 0 && firstErr != nil {
		return nil, nil, firstErr
	}
	return reports, failed, nil
}
