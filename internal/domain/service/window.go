package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/diillson/ads-budget-realloc-go/internal/domain/entity"
	"github.com/diillson/ads-budget-realloc-go/internal/shared/types"
)

const (
	dateLayout = "2006-01-02"

	// maxCachedDays limita a tabela de memoização de uma sessão.
	maxCachedDays = 366
)

// civilDate trunca o horário, mantendo apenas ano/mês/dia em UTC.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ComputeRemainingDays retorna quantos dias restam no mês de endDate, contando endDate.
func ComputeRemainingDays(endDate time.Time) (int, error) {
	if endDate.IsZero() {
		return 0, types.ErrInvalidDate
	}

	end := civilDate(endDate)

	// Dia 28 + 4 dias sempre cai no mês seguinte; volta para o dia 1 e subtrai um dia.
	day28 := time.Date(end.Year(), end.Month(), 28, 0, 0, 0, 0, time.UTC)
	nextMonth := day28.AddDate(0, 0, 4)
	firstOfNext := time.Date(nextMonth.Year(), nextMonth.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstOfNext.AddDate(0, 0, -1)

	return int(lastDay.Sub(end).Hours()/24) + 1, nil
}

// DayCounter memoiza ComputeRemainingDays por data civil durante uma sessão.
type DayCounter struct {
	mu    sync.Mutex
	cache map[time.Time]int
}

// NewDayCounter cria uma tabela de memoização vazia.
func NewDayCounter() *DayCounter {
	return &DayCounter{cache: make(map[time.Time]int)}
}

// RemainingDays consulta a tabela antes de calcular.
func (c *DayCounter) RemainingDays(endDate time.Time) (int, error) {
	if endDate.IsZero() {
		return 0, types.ErrInvalidDate
	}
	key := civilDate(endDate)

	c.mu.Lock()
	defer c.mu.Unlock()

	if days, ok := c.cache[key]; ok {
		return days, nil
	}

	days, err := ComputeRemainingDays(key)
	if err != nil {
		return 0, err
	}

	if len(c.cache) >= maxCachedDays {
		c.cache = make(map[time.Time]int)
	}
	c.cache[key] = days
	return days, nil
}

// Len retorna quantas datas estão memoizadas.
func (c *DayCounter) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

// Reset limpa a tabela (fim de sessão ou novo fetch).
func (c *DayCounter) Reset() {
	c.mu.Lock()
	c.cache = make(map[time.Time]int)
	c.mu.Unlock()
}

// ParseDateRange interpreta o seletor de datas. Menos de duas datas não é erro:
// ok volta false e a ação vira no-op.
func ParseDateRange(values []string) (start, end time.Time, ok bool, err error) {
	dates := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			dates = append(dates, v)
		}
	}

	if len(dates) < 2 {
		return time.Time{}, time.Time{}, false, nil
	}
	if len(dates) > 2 {
		return time.Time{}, time.Time{}, false, &types.InputValidationError{
			Field:  "date range",
			Reason: fmt.Sprintf("expected exactly 2 dates, got %d", len(dates)),
		}
	}

	start, err = time.Parse(dateLayout, dates[0])
	if err != nil {
		return time.Time{}, time.Time{}, false, &types.InputValidationError{Field: "start date", Reason: err.Error()}
	}
	end, err = time.Parse(dateLayout, dates[1])
	if err != nil {
		return time.Time{}, time.Time{}, false, &types.InputValidationError{Field: "end date", Reason: err.Error()}
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, false, &types.InputValidationError{
			Field:  "date range",
			Reason: fmt.Sprintf("start %s is after end %s", dates[0], dates[1]),
		}
	}

	return start, end, true, nil
}

// DefaultDateRange retorna [primeiro dia do mês, hoje].
func DefaultDateRange(now time.Time) []string {
	today := civilDate(now)
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	return []string{first.Format(dateLayout), today.Format(dateLayout)}
}

// NewBillingWindow monta a janela a partir das datas escolhidas.
func NewBillingWindow(start, end time.Time, counter *DayCounter) (entity.BillingWindow, error) {
	if start.IsZero() || end.IsZero() {
		return entity.BillingWindow{}, types.ErrInvalidDate
	}

	var (
		days int
		err  error
	)
	if counter != nil {
		days, err = counter.RemainingDays(end)
	} else {
		days, err = ComputeRemainingDays(end)
	}
	if err != nil {
		return entity.BillingWindow{}, err
	}

	return entity.BillingWindow{
		PeriodStart:   civilDate(start),
		PeriodEnd:     civilDate(end),
		RemainingDays: days,
	}, nil
}
