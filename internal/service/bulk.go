package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"addrcore/internal/model"
)

// BulkOptions bounds bulk resolution
type BulkOptions struct {
	Concurrency      int
	BatchSize        int
	BatchPause       time.Duration
	MaxAddressLength int
}

func (o BulkOptions) withDefaults() BulkOptions {
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 1
	}
	return o
}

// remoteAreas are islands and regions with surcharged or delayed delivery.
var remoteAreas = []string{
	"제주특별자치도", "울릉군", "옹진군", "신안군", "완도군", "진도군",
	"백령면", "대청면", "연평면", "흑산면", "추자면", "우도면",
}

// ResolveBulk resolves items in batches with bounded concurrency. One item
// failing never affects the others; results keep the request order.
func (s *AddressService) ResolveBulk(ctx context.Context, items []model.BulkItem) *model.BulkResponse {
	start := time.Now()
	results := make([]model.BulkItemResult, len(items))

	for from := 0; from < len(items); from += s.bulk.BatchSize {
		to := min(from+s.bulk.BatchSize, len(items))

		var g errgroup.Group
		g.SetLimit(s.bulk.Concurrency)
		for i := from; i < to; i++ {
			g.Go(func() error {
				results[i] = s.resolveItem(ctx, items[i])
				return nil
			})
		}
		_ = g.Wait()

		if to < len(items) && s.bulk.BatchPause > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(s.bulk.BatchPause):
			}
		}
	}

	resp := &model.BulkResponse{
		RequestID: uuid.NewString(),
		Results:   results,
		Summary:   summarize(results),
		Took:      time.Since(start).Milliseconds(),
	}
	s.log.InfoContext(ctx, "bulk resolution done",
		"request_id", resp.RequestID,
		"total", resp.Summary.Total,
		"valid", resp.Summary.Valid,
		"warning", resp.Summary.Warning,
		"invalid", resp.Summary.Invalid,
		"took_ms", resp.Took,
	)
	return resp
}

func (s *AddressService) resolveItem(ctx context.Context, item model.BulkItem) model.BulkItemResult {
	result := s.Resolve(ctx, item.Address)
	return model.BulkItemResult{
		Index:          item.Index,
		Result:         result,
		Phone:          FormatPhone(item.Phone),
		RemoteArea:     IsRemoteArea(result.CanonicalAddress),
		LengthExceeded: exceedsLength(result, s.bulk.MaxAddressLength),
	}
}

func summarize(results []model.BulkItemResult) model.BulkSummary {
	summary := model.BulkSummary{Total: len(results)}
	for _, r := range results {
		switch r.Result.Status {
		case model.StatusValid:
			summary.Valid++
		case model.StatusWarning:
			summary.Warning++
		default:
			summary.Invalid++
		}
		if r.RemoteArea {
			summary.RemoteArea++
		}
		if r.LengthExceeded {
			summary.LengthExceeded++
		}
	}
	return summary
}

// IsRemoteArea reports whether a canonical address lies in a remote region.
func IsRemoteArea(canonical string) bool {
	if canonical == "" {
		return false
	}
	for _, area := range remoteAreas {
		if strings.Contains(canonical, area) {
			return true
		}
	}
	return false
}

func exceedsLength(result model.AddressResolutionResult, limit int) bool {
	if limit <= 0 || result.CanonicalAddress == "" {
		return false
	}
	full := strings.TrimSpace(result.CanonicalAddress + " " + result.DetailAddress)
	return utf8.RuneCountInString(full) > limit
}

// FormatPhone renders a Korean phone number with hyphens. Numbers that fit
// no known shape come back as bare digits.
func FormatPhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)

	if strings.HasPrefix(digits, "82") && len(digits) >= 11 {
		digits = "0" + digits[2:]
	}

	switch n := len(digits); {
	case n == 0:
		return ""
	case n == 8 && (strings.HasPrefix(digits, "15") || strings.HasPrefix(digits, "16") || strings.HasPrefix(digits, "18")):
		return digits[:4] + "-" + digits[4:]
	case strings.HasPrefix(digits, "02") && (n == 9 || n == 10):
		return digits[:2] + "-" + digits[2:n-4] + "-" + digits[n-4:]
	case n == 10 || n == 11:
		return digits[:3] + "-" + digits[3:n-4] + "-" + digits[n-4:]
	default:
		return digits
	}
}
