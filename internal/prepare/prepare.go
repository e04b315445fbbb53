// Package prepare orchestrates per-session preparation: strip fields,
// detect and redact content, verify residue, assemble the batch result.
// The engine performs no I/O; callers fetch raw session bytes and
// persist whatever comes back.
package prepare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nickmvincent/agentwatch/internal/bundle"
	"github.com/nickmvincent/agentwatch/internal/profile"
	"github.com/nickmvincent/agentwatch/internal/redact"
	"github.com/nickmvincent/agentwatch/internal/strip"
)

// Session is one raw transcript handed in by the caller.
type Session struct {
	ID     string
	Source string
	Raw    []byte
}

// Request is one preparation call. Redaction must be fully specified;
// default-filling is the caller's job (redact.DefaultConfig).
type Request struct {
	Sessions  []Session
	Profile   *profile.Profile
	Redaction redact.Config
	// SelectedFields overrides the profile's kept fields when non-empty.
	SelectedFields []string
	// Contributor is opaque passthrough for downstream bundling.
	Contributor bundle.Contributor
}

// Options tune a Preparer. Zero values select the defaults.
type Options struct {
	// Workers bounds batch parallelism. Defaults to GOMAXPROCS.
	Workers int
	// SharedPlaceholders widens placeholder scope from one session to the
	// whole batch. This serializes the batch: one assigner, no fan-out.
	SharedPlaceholders bool
	// BlockThreshold is the residue warning count at which the report is
	// marked blocked. Defaults to 1: any warning blocks.
	BlockThreshold int
	// PreviewChars caps preview lengths. Defaults to 2000.
	PreviewChars int
}

// PreparedSession is the per-session output.
type PreparedSession struct {
	SessionID       string          `json:"session_id"`
	Source          string          `json:"source"`
	PreviewOriginal string          `json:"preview_original"`
	PreviewRedacted string          `json:"preview_redacted"`
	RawOriginal     json.RawMessage `json:"raw_json_original"`
	Raw             json.RawMessage `json:"raw_json"`
	ApproxChars     int             `json:"approx_chars"`
	// RawSHA256 digests the redacted content in canonical (RFC 8785)
	// form, so dedup is stable across key-order differences.
	RawSHA256 string  `json:"raw_sha256"`
	Score     float64 `json:"score"`
}

// SessionError reports one failed session without failing its siblings.
type SessionError struct {
	SessionID string `json:"session_id"`
	Err       string `json:"error"`
}

// Report aggregates redaction activity across the batch.
type Report struct {
	TotalRedactions   int                     `json:"total_redactions"`
	CountsByCategory  map[redact.Category]int `json:"counts_by_category"`
	EnabledCategories []string                `json:"enabled_categories"`
	ResidueWarnings   []string                `json:"residue_warnings"`
	Blocked           bool                    `json:"blocked"`
}

// SourceFields lists discovered and kept field paths for one source type.
type SourceFields struct {
	Present []string `json:"present"`
	Kept    []string `json:"kept"`
}

// RedactionInfo summarizes one session's substitutions.
type RedactionInfo struct {
	Total        int                     `json:"total"`
	ByCategory   map[redact.Category]int `json:"by_category"`
	Placeholders []redact.AssignedToken  `json:"placeholders"`
}

// Stats counts batch outcomes.
type Stats struct {
	Requested       int `json:"requested"`
	Prepared        int `json:"prepared"`
	Failed          int `json:"failed"`
	TotalChars      int `json:"total_chars"`
	TotalRedactions int `json:"total_redactions"`
}

// Result is the full preparation output.
type Result struct {
	Sessions       []PreparedSession        `json:"sessions"`
	Report         Report                   `json:"redaction_report"`
	Errors         []SessionError           `json:"errors,omitempty"`
	StrippedFields []string                 `json:"stripped_fields"`
	FieldsPresent  []string                 `json:"fields_present"`
	FieldsBySource map[string]SourceFields  `json:"fields_by_source"`
	RedactionInfo  map[string]RedactionInfo `json:"redaction_info_map"`
	Stats          Stats                    `json:"stats"`
	Contributor    bundle.Contributor       `json:"contributor"`
}

// Preparer runs preparation batches against a fixed pattern library.
// Safe for concurrent use; all per-call state lives in the call.
type Preparer struct {
	lib  *redact.Library
	log  *zap.Logger
	opts Options
}

// New creates a Preparer. A nil logger disables logging.
func New(lib *redact.Library, log *zap.Logger, opts Options) *Preparer {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.BlockThreshold <= 0 {
		opts.BlockThreshold = 1
	}
	if opts.PreviewChars <= 0 {
		opts.PreviewChars = 2000
	}
	return &Preparer{lib: lib, log: log, opts: opts}
}

// outcome carries one session's results to aggregation.
type outcome struct {
	session  *PreparedSession
	fields   *strip.Result
	events   []redact.Event
	warnings []string
	tokens   []redact.AssignedToken
	err      error
}

// Prepare runs the batch. Per-session failures land in Result.Errors;
// only call-level problems (nil profile, invalid custom regex,
// cancellation) return an error.
func (p *Preparer) Prepare(ctx context.Context, req Request) (*Result, error) {
	if req.Profile == nil {
		return nil, fmt.Errorf("prepare: profile is required")
	}
	pipeline, err := redact.NewPipeline(p.lib, req.Redaction)
	if err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}

	keptFields := req.Profile.KeptFields
	if len(req.SelectedFields) > 0 {
		keptFields = req.SelectedFields
	}

	outcomes := make([]outcome, len(req.Sessions))
	if p.opts.SharedPlaceholders {
		// Batch-wide placeholder scope trades parallelism for
		// cross-session placeholder stability.
		asn := redact.NewAssigner()
		for i, sess := range req.Sessions {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			outcomes[i] = p.prepareOne(sess, keptFields, pipeline, asn)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.opts.Workers)
		for i, sess := range req.Sessions {
			i, sess := i, sess
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				outcomes[i] = p.prepareOne(sess, keptFields, pipeline, redact.NewAssigner())
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	return p.assemble(req, pipeline.Config(), outcomes), nil
}

// prepareOne runs the linear per-session pipeline:
// parse → strip → detect → residue check → assemble.
func (p *Preparer) prepareOne(sess Session, keptFields []string, pipeline *redact.Pipeline, asn *redact.Assigner) outcome {
	doc, err := decodeSession(sess.Raw)
	if err != nil {
		p.log.Warn("session skipped",
			zap.String("session", sess.ID),
			zap.Error(err))
		return outcome{err: fmt.Errorf("parse session: %w", err)}
	}

	reduced, fields := strip.Strip(doc, keptFields)
	if sess.Source != "" {
		fields.Source = sess.Source
	}

	reducedJSON, err := json.Marshal(reduced)
	if err != nil {
		return outcome{err: fmt.Errorf("serialize stripped session: %w", err)}
	}

	redacted, events := pipeline.Detect(string(reducedJSON), asn)
	warnings := redact.CheckResidue(p.lib, redacted)

	sha, err := canonicalDigest([]byte(redacted))
	if err != nil {
		return outcome{err: fmt.Errorf("digest redacted session: %w", err)}
	}

	prevOrig := preview(string(reducedJSON), p.opts.PreviewChars)
	prevRed := preview(redacted, p.opts.PreviewChars)

	p.log.Debug("session prepared",
		zap.String("session", sess.ID),
		zap.Int("redactions", len(events)),
		zap.Int("residue_warnings", len(warnings)))

	return outcome{
		session: &PreparedSession{
			SessionID:       sess.ID,
			Source:          fields.Source,
			PreviewOriginal: prevOrig,
			PreviewRedacted: prevRed,
			RawOriginal:     json.RawMessage(bytes.TrimSpace(sess.Raw)),
			Raw:             json.RawMessage(redacted),
			ApproxChars:     len(redacted),
			RawSHA256:       sha,
			Score:           similarity(prevOrig, prevRed),
		},
		fields:   fields,
		events:   events,
		warnings: warnings,
		tokens:   asn.Mapping(),
	}
}

// assemble folds per-session outcomes into the batch result, preserving
// input order.
func (p *Preparer) assemble(req Request, cfg redact.Config, outcomes []outcome) *Result {
	res := &Result{
		FieldsBySource: make(map[string]SourceFields),
		RedactionInfo:  make(map[string]RedactionInfo),
		Contributor:    req.Contributor,
		Report: Report{
			CountsByCategory:  make(map[redact.Category]int),
			EnabledCategories: cfg.EnabledCategories(),
		},
	}
	res.Stats.Requested = len(req.Sessions)

	strippedSet := make(map[string]bool)
	presentSet := make(map[string]bool)
	bySource := make(map[string]map[string]bool) // source → path → kept

	for i, o := range outcomes {
		id := req.Sessions[i].ID
		if o.err != nil {
			res.Errors = append(res.Errors, SessionError{SessionID: id, Err: o.err.Error()})
			res.Stats.Failed++
			continue
		}

		res.Sessions = append(res.Sessions, *o.session)
		res.Stats.Prepared++
		res.Stats.TotalChars += o.session.ApproxChars

		info := RedactionInfo{
			Total:        len(o.events),
			ByCategory:   make(map[redact.Category]int),
			Placeholders: o.tokens,
		}
		for _, e := range o.events {
			res.Report.CountsByCategory[e.Category]++
			info.ByCategory[e.Category]++
		}
		res.Report.TotalRedactions += len(o.events)
		res.RedactionInfo[id] = info

		for _, w := range o.warnings {
			res.Report.ResidueWarnings = append(res.Report.ResidueWarnings,
				fmt.Sprintf("session %s: %s", id, w))
		}

		src := o.fields.Source
		if bySource[src] == nil {
			bySource[src] = make(map[string]bool)
		}
		for _, f := range o.fields.Kept {
			presentSet[f] = true
			bySource[src][f] = true
		}
		for _, f := range o.fields.Stripped {
			presentSet[f] = true
			strippedSet[f] = true
			if !bySource[src][f] {
				bySource[src][f] = false
			}
		}
	}

	res.Report.Blocked = len(res.Report.ResidueWarnings) >= p.opts.BlockThreshold
	res.Stats.TotalRedactions = res.Report.TotalRedactions
	res.StrippedFields = sortedKeys(strippedSet)
	res.FieldsPresent = sortedKeys(presentSet)
	for src, paths := range bySource {
		sf := SourceFields{}
		for path, kept := range paths {
			sf.Present = append(sf.Present, path)
			if kept {
				sf.Kept = append(sf.Kept, path)
			}
		}
		sort.Strings(sf.Present)
		sort.Strings(sf.Kept)
		res.FieldsBySource[src] = sf
	}

	p.log.Info("batch prepared",
		zap.Int("requested", res.Stats.Requested),
		zap.Int("prepared", res.Stats.Prepared),
		zap.Int("failed", res.Stats.Failed),
		zap.Int("redactions", res.Report.TotalRedactions),
		zap.Bool("blocked", res.Report.Blocked))

	return res
}

// decodeSession parses raw JSON preserving numeric literals, so that
// re-serialization is byte-stable for idempotence.
func decodeSession(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after JSON document")
	}
	return doc, nil
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
