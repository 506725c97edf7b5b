// Package audit is the outbound adapter (C8) that writes audit records to
// a Solr-compatible index over HTTP, grounded on the reference
// implementation's one-record-per-update-call contract.
package audit

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	domainaudit "github.com/ranger-acl/rangeracl/internal/domain/audit"
)

// SolrSink posts records to {baseURL}/update?commit=true, one record per
// request. spec.md §6 fixes the wire contract as a JSON array containing a
// single audit record; any batching of records happens upstream of this
// adapter (the audit emitter's internal flush batch), never on the wire.
type SolrSink struct {
	baseURL string
	http    *http.Client
}

// NewSolrSink creates a SolrSink for the given Solr collection base URL
// (e.g. "http://solr:8983/solr/ranger_audits").
func NewSolrSink(baseURL string) *SolrSink {
	return &SolrSink{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Write posts each record as its own request, since Ranger's Solr audit
// handler is documented to accept a single-element array per update call.
// A failure on one record doesn't stop the rest from being attempted; all
// failures are joined into the returned error.
func (s *SolrSink) Write(ctx context.Context, records ...domainaudit.Record) error {
	var errs []error
	for _, record := range records {
		if err := s.postOne(ctx, record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *SolrSink) postOne(ctx context.Context, record domainaudit.Record) error {
	body, err := json.Marshal([]domainaudit.Record{record})
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/update?commit=true", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build audit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("post audit record: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("audit sink returned status %d", resp.StatusCode)
	}
	return nil
}

var _ domainaudit.Sink = (*SolrSink)(nil)
