// Package stores_repo provides PostgreSQL repositories for the stores subsystem.
package stores_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"confhub/internal/core/apperror"
	"confhub/internal/domain"
	"confhub/internal/infrastructure/storage/postgres"
)

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// searchAny matches term against every column with ILIKE.
func searchAny(q squirrel.SelectBuilder, term string, cols ...string) squirrel.SelectBuilder {
	term = strings.TrimSpace(term)
	if term == "" {
		return q
	}
	pattern := "%" + term + "%"
	or := make(squirrel.Or, 0, len(cols))
	for _, col := range cols {
		or = append(or, squirrel.ILike{col: pattern})
	}
	return q.Where(or)
}

// orderBy whitelists the sort column. "-field" sorts descending.
func orderBy(value, fallback string, allowed ...string) (string, error) {
	if value == "" {
		return fallback, nil
	}
	direction := "ASC"
	field := value
	if strings.HasPrefix(value, "-") {
		direction = "DESC"
		field = value[1:]
	}
	for _, a := range allowed {
		if a == field {
			return field + " " + direction, nil
		}
	}
	return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", value)
}

// selectPage counts q, then reads one page of it ordered by order.
func selectPage[T any](ctx context.Context, querier postgres.Querier, q squirrel.SelectBuilder, order string, f domain.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{Items: []T{}, Limit: f.Limit, Offset: f.Offset}

	countSQL, countArgs, err := builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy(order, "id")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list: %w", err)
	}
	return result, nil
}
