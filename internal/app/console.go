package app

import (
	"context"
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alpn-software/portfolio-client/internal/config"
	"github.com/alpn-software/portfolio-client/internal/domain"
	"github.com/alpn-software/portfolio-client/internal/logger"
	"github.com/alpn-software/portfolio-client/internal/storage"
	"github.com/alpn-software/portfolio-client/pkg/publicapi"
	"github.com/alpn-software/portfolio-client/pkg/publishers"
)

// Console is the command-line runtime. It wires the public API client with the
// local submission journal and the optional event publishers.
type Console struct {
	cfg    *config.Config
	api    *publicapi.Client
	store  storage.Store
	fanout *publishers.Fanout
	log    logger.Logger
	now    func() time.Time
}

// NewConsole builds a console runtime from config.
func NewConsole(ctx context.Context, cfg *config.Config, log logger.Logger) (*Console, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	api := publicapi.New(publicapi.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.RequestTimeout,
	})
	log.DebugObj("api client configured", "api_config", map[string]any{
		"base_url":        cfg.APIBaseURL,
		"timeout_seconds": int(cfg.RequestTimeout.Seconds()),
	})

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		return nil, err
	}

	storeOpts := storage.Options{
		SubmissionTTL:   cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.StoragePath(), storeOpts)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.DebugObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.StoragePath(),
		"submission_ttl_seconds":   int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	return newConsole(cfg, log, api, store, fanout), nil
}

func newConsole(cfg *config.Config, log logger.Logger, api *publicapi.Client, store storage.Store, fanout *publishers.Fanout) *Console {
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Console{
		cfg:    cfg,
		api:    api,
		store:  store,
		fanout: fanout,
		log:    log,
		now:    time.Now,
	}
}

// buildFanout loads the publishers file when one is configured.
func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if strings.TrimSpace(path) == "" {
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabled := publisherReg.Enabled()
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})

	return publishers.NewFanout(pubClients), nil
}

// ResumeRequest selects the resume format and whether to unpack the envelope.
type ResumeRequest struct {
	Format string
	Decode bool
}

// ResumeResult carries the raw response and, when requested, the decoded resume.
type ResumeResult struct {
	Response publicapi.Response
	Resume   *publicapi.Resume
}

// FetchResume downloads the resume in the requested format.
func (c *Console) FetchResume(ctx context.Context, req ResumeRequest) (ResumeResult, error) {
	start := c.now()
	resp, err := c.api.FetchCV(ctx, req.Format)
	if err != nil {
		c.log.ErrorObj("resume fetch failed", "resume_error", map[string]any{
			"format": req.Format,
			"error":  err.Error(),
		})
		return ResumeResult{Response: resp}, err
	}
	c.log.InfoObj("resume fetched", "resume_meta", map[string]any{
		"format":     req.Format,
		"status":     resp.StatusCode(),
		"bytes":      len(resp.Body()),
		"elapsed_ms": c.now().Sub(start).Milliseconds(),
	})

	out := ResumeResult{Response: resp}
	if !req.Decode {
		return out, nil
	}

	resume, err := publicapi.DecodeResume(req.Format, resp)
	if err != nil {
		return out, fmt.Errorf("decode resume: %w", err)
	}
	out.Resume = &resume
	return out, nil
}

// SubmitContact sends the contact form, journals the attempt and notifies publishers.
// The API error, if any, is returned unchanged; journal and publisher failures are only logged.
func (c *Console) SubmitContact(ctx context.Context, data publicapi.ContactData) (domain.Submission, error) {
	submittedAt := c.now().UTC()
	resp, apiErr := c.api.CreateContact(ctx, data)

	sub := domain.Submission{
		Email:       stringField(data, publicapi.FieldEmail),
		Name:        stringField(data, publicapi.FieldName),
		Message:     stringField(data, publicapi.FieldMessage),
		SubmittedAt: submittedAt,
	}
	sub.ID = submissionID(sub)
	if resp != nil {
		sub.StatusCode = resp.StatusCode()
		sub.RequestID = requestID(resp.Body())
	}
	if apiErr != nil {
		sub.Error = apiErr.Error()
		c.log.ErrorObj("contact submission failed", "contact_error", map[string]any{
			"submission_id": sub.ID,
			"status":        sub.StatusCode,
			"error":         apiErr.Error(),
		})
	} else {
		c.log.InfoObj("contact submitted", "contact_meta", map[string]any{
			"submission_id": sub.ID,
			"status":        sub.StatusCode,
			"request_id":    sub.RequestID,
		})
	}

	if err := c.store.RecordSubmission(sub); err != nil {
		c.log.WarnObj("journal write failed", "journal_error", map[string]any{
			"submission_id": sub.ID,
			"error":         err.Error(),
		})
	}

	if c.fanout.Size() > 0 {
		delivered, err := c.fanout.Publish(ctx, publishers.NewEvent(sub))
		if err != nil {
			c.log.WarnObj("event publish failed", "publish_error", map[string]any{
				"submission_id": sub.ID,
				"delivered":     delivered,
				"error":         err.Error(),
			})
		}
	}

	return sub, apiErr
}

// Health calls the service health probe.
func (c *Console) Health(ctx context.Context) (publicapi.Response, error) {
	return c.api.Health(ctx)
}

// Version reports the API version.
func (c *Console) Version(ctx context.Context) (publicapi.Response, error) {
	return c.api.Version(ctx)
}

// History lists journaled submissions, newest first.
func (c *Console) History() ([]domain.Submission, error) {
	subs, err := c.store.Submissions()
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return subs, nil
}

// Close releases the journal and publisher connections.
func (c *Console) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	if err := c.fanout.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publishers: %w", err))
	}
	return errors.Join(errs...)
}

func stringField(data publicapi.ContactData, key string) string {
	v, ok := data[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func submissionID(sub domain.Submission) string {
	sum := sha1.Sum([]byte(sub.Email + "\x00" + sub.Message + "\x00" + sub.SubmittedAt.Format(time.RFC3339Nano)))
	return hex.EncodeToString(sum[:])
}

// requestID extracts the id from a {"data": "<id>"} reply, if present.
func requestID(body []byte) string {
	var env struct {
		Data any `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	if id, ok := env.Data.(string); ok {
		return id
	}
	return ""
}
