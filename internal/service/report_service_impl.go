package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/report"
	"github.com/alexanderramin/timesheet/internal/repository"
)

type reportService struct {
	entries  repository.EntryRepo
	observer UseCaseObserver
}

func NewReportService(entries repository.EntryRepo, observers ...UseCaseObserver) ReportService {
	return &reportService{entries: entries, observer: useCaseObserverOrNoop(observers)}
}

func (q ReportQuery) validate() error {
	fields := make(map[string]string)
	if q.GroupBy != "" && q.GroupBy != GroupByClient {
		fields["groupBy"] = fmt.Sprintf("unsupported grouping %q", q.GroupBy)
	}
	if !q.Start.IsZero() && !q.End.IsZero() && q.End.Before(q.Start) {
		fields["endDate"] = "must not be before start date"
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Message: "invalid report query", Fields: fields}
	}
	return nil
}

func (s *reportService) FetchFilteredReports(ctx context.Context, q ReportQuery) (result *ReportResult, err error) {
	defer observe(ctx, s.observer, "fetch-filtered-reports", time.Now(), map[string]any{
		"group_by": q.GroupBy,
		"start":    q.Start.Format(domain.DateLayout),
		"end":      q.End.Format(domain.DateLayout),
	}, &err)

	if err = q.validate(); err != nil {
		return nil, err
	}
	var entries []domain.Entry
	entries, err = s.entries.ListFiltered(ctx, repository.EntryFilter{
		Start:       q.Start,
		End:         q.End,
		ClientIDs:   q.Filters.Clients,
		UserIDs:     q.Filters.Users,
		ActivityIDs: q.Filters.Activities,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching reports: %w", err)
	}
	if q.GroupBy != GroupByClient {
		return &ReportResult{Entries: entries}, nil
	}

	byClient := make(map[string][]domain.Entry)
	for _, e := range entries {
		byClient[e.ClientID] = append(byClient[e.ClientID], e)
	}
	groups := make(map[string]report.ClientGroup, len(byClient))
	for id, list := range byClient {
		groups[id] = report.NewClientGroup(list)
	}
	return &ReportResult{ByClient: groups}, nil
}

func (s *reportService) FirstActivityDate(ctx context.Context) (time.Time, error) {
	return s.entries.FirstDate(ctx)
}
