package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/report"
)

var (
	_ pflag.Value = (*monthValue)(nil)
	_ pflag.Value = (*dateValue)(nil)
	_ pflag.Value = (*orderValue)(nil)
)

// monthValue is a --month flag in YYYY-MM form.
type monthValue struct {
	period domain.Period
	set    bool
}

func (m *monthValue) String() string {
	if !m.set {
		return ""
	}
	return m.period.Key()
}

func (m *monthValue) Set(s string) error {
	p, err := domain.ParsePeriodKey(s)
	if err != nil {
		return err
	}
	m.period, m.set = p, true
	return nil
}

func (m *monthValue) Type() string { return "YYYY-MM" }

// dateValue is a YYYY-MM-DD flag.
type dateValue struct {
	t   time.Time
	set bool
}

func (d *dateValue) String() string {
	if !d.set {
		return ""
	}
	return d.t.Format(domain.DateLayout)
}

func (d *dateValue) Set(s string) error {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return fmt.Errorf("expected YYYY-MM-DD")
	}
	d.t, d.set = t, true
	return nil
}

func (d *dateValue) Type() string { return "YYYY-MM-DD" }

// orderValue is a --sort flag: a field name, prefixed with "-" for
// descending order.
type orderValue struct {
	order report.Order
}

func newOrderValue() *orderValue {
	return &orderValue{order: report.DefaultOrder}
}

func (o *orderValue) String() string {
	if o.order.Direction == report.Desc {
		return "-" + o.order.Field
	}
	return o.order.Field
}

func (o *orderValue) Set(s string) error {
	field, desc := strings.CutPrefix(s, "-")
	if !report.IsSortField(field) {
		return fmt.Errorf("unknown sort field %q (one of %s)", field, strings.Join(report.SortFields, ", "))
	}
	o.order = report.Order{Field: field, Direction: report.Asc}
	if desc {
		o.order.Direction = report.Desc
	}
	return nil
}

func (o *orderValue) Type() string { return "field" }
