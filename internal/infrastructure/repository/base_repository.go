package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// QueryBuilder assembles a parameterized SQL query incrementally, the
// way every Store repository builds its dynamic filter clauses (§4.1).
type QueryBuilder interface {
	Select(columns ...string) QueryBuilder
	From(table string) QueryBuilder
	Where(condition string, args ...interface{}) QueryBuilder
	Join(joinType, table, condition string) QueryBuilder
	LeftJoin(table, condition string) QueryBuilder
	InnerJoin(table, condition string) QueryBuilder
	OrderBy(column, direction string) QueryBuilder
	GroupBy(columns ...string) QueryBuilder
	Having(condition string, args ...interface{}) QueryBuilder
	Limit(limit int) QueryBuilder
	Offset(offset int) QueryBuilder
	Build() (query string, args []interface{})
	BuildCount() (query string, args []interface{})
	Reset() QueryBuilder
}

type queryBuilder struct {
	selectCols  []string
	fromTable   string
	whereConds  []whereCondition
	joins       []joinClause
	orderByCols []orderClause
	groupByCols []string
	havingConds []whereCondition
	limitVal    *int
	offsetVal   *int
	argCounter  int
	args        []interface{}
}

type whereCondition struct {
	condition string
	args      []interface{}
}

type joinClause struct {
	joinType  string
	table     string
	condition string
}

type orderClause struct {
	column    string
	direction string
}

func NewQueryBuilder() QueryBuilder {
	return &queryBuilder{
		selectCols:  make([]string, 0),
		whereConds:  make([]whereCondition, 0),
		joins:       make([]joinClause, 0),
		orderByCols: make([]orderClause, 0),
		groupByCols: make([]string, 0),
		havingConds: make([]whereCondition, 0),
		args:        make([]interface{}, 0),
	}
}

func (qb *queryBuilder) Select(columns ...string) QueryBuilder {
	qb.selectCols = append(qb.selectCols, columns...)
	return qb
}

func (qb *queryBuilder) From(table string) QueryBuilder {
	qb.fromTable = table
	return qb
}

func (qb *queryBuilder) Where(condition string, args ...interface{}) QueryBuilder {
	adjustedCondition := qb.adjustPlaceholders(condition, len(args))
	qb.whereConds = append(qb.whereConds, whereCondition{
		condition: adjustedCondition,
		args:      args,
	})
	qb.args = append(qb.args, args...)
	return qb
}

func (qb *queryBuilder) Join(joinType, table, condition string) QueryBuilder {
	qb.joins = append(qb.joins, joinClause{
		joinType:  joinType,
		table:     table,
		condition: condition,
	})
	return qb
}

func (qb *queryBuilder) LeftJoin(table, condition string) QueryBuilder {
	return qb.Join("LEFT", table, condition)
}

func (qb *queryBuilder) InnerJoin(table, condition string) QueryBuilder {
	return qb.Join("INNER", table, condition)
}

func (qb *queryBuilder) OrderBy(column, direction string) QueryBuilder {
	if direction != "ASC" && direction != "DESC" {
		direction = "ASC"
	}
	qb.orderByCols = append(qb.orderByCols, orderClause{
		column:    column,
		direction: direction,
	})
	return qb
}

func (qb *queryBuilder) GroupBy(columns ...string) QueryBuilder {
	qb.groupByCols = append(qb.groupByCols, columns...)
	return qb
}

func (qb *queryBuilder) Having(condition string, args ...interface{}) QueryBuilder {
	adjustedCondition := qb.adjustPlaceholders(condition, len(args))
	qb.havingConds = append(qb.havingConds, whereCondition{
		condition: adjustedCondition,
		args:      args,
	})
	qb.args = append(qb.args, args...)
	return qb
}

func (qb *queryBuilder) Limit(limit int) QueryBuilder {
	if limit > 0 {
		qb.limitVal = &limit
	}
	return qb
}

func (qb *queryBuilder) Offset(offset int) QueryBuilder {
	if offset >= 0 {
		qb.offsetVal = &offset
	}
	return qb
}

func (qb *queryBuilder) Build() (string, []interface{}) {
	var query strings.Builder

	query.WriteString("SELECT ")
	if len(qb.selectCols) > 0 {
		query.WriteString(strings.Join(qb.selectCols, ", "))
	} else {
		query.WriteString("*")
	}

	if qb.fromTable != "" {
		query.WriteString(" FROM ")
		query.WriteString(qb.fromTable)
	}

	for _, join := range qb.joins {
		query.WriteString(fmt.Sprintf(" %s JOIN %s ON %s", join.joinType, join.table, join.condition))
	}

	if len(qb.whereConds) > 0 {
		query.WriteString(" WHERE ")
		query.WriteString(qb.joinConditions(qb.whereConds))
	}

	if len(qb.groupByCols) > 0 {
		query.WriteString(" GROUP BY ")
		query.WriteString(strings.Join(qb.groupByCols, ", "))
	}

	if len(qb.havingConds) > 0 {
		query.WriteString(" HAVING ")
		query.WriteString(qb.joinConditions(qb.havingConds))
	}

	if len(qb.orderByCols) > 0 {
		query.WriteString(" ORDER BY ")
		orderClauses := make([]string, len(qb.orderByCols))
		for i, order := range qb.orderByCols {
			orderClauses[i] = fmt.Sprintf("%s %s", order.column, order.direction)
		}
		query.WriteString(strings.Join(orderClauses, ", "))
	}

	if qb.limitVal != nil {
		query.WriteString(fmt.Sprintf(" LIMIT %d", *qb.limitVal))
	}

	if qb.offsetVal != nil {
		query.WriteString(fmt.Sprintf(" OFFSET %d", *qb.offsetVal))
	}

	return query.String(), qb.args
}

func (qb *queryBuilder) BuildCount() (string, []interface{}) {
	var query strings.Builder
	query.WriteString("SELECT COUNT(*)")

	if qb.fromTable != "" {
		query.WriteString(" FROM ")
		query.WriteString(qb.fromTable)
	}

	for _, join := range qb.joins {
		query.WriteString(fmt.Sprintf(" %s JOIN %s ON %s", join.joinType, join.table, join.condition))
	}

	if len(qb.whereConds) > 0 {
		query.WriteString(" WHERE ")
		query.WriteString(qb.joinConditions(qb.whereConds))
	}

	if len(qb.groupByCols) > 0 {
		var groupQuery strings.Builder
		groupQuery.WriteString("SELECT COUNT(*) FROM (SELECT 1")
		if qb.fromTable != "" {
			groupQuery.WriteString(" FROM ")
			groupQuery.WriteString(qb.fromTable)
		}
		for _, join := range qb.joins {
			groupQuery.WriteString(fmt.Sprintf(" %s JOIN %s ON %s", join.joinType, join.table, join.condition))
		}
		if len(qb.whereConds) > 0 {
			groupQuery.WriteString(" WHERE ")
			groupQuery.WriteString(qb.joinConditions(qb.whereConds))
		}
		groupQuery.WriteString(" GROUP BY ")
		groupQuery.WriteString(strings.Join(qb.groupByCols, ", "))
		if len(qb.havingConds) > 0 {
			groupQuery.WriteString(" HAVING ")
			groupQuery.WriteString(qb.joinConditions(qb.havingConds))
		}
		groupQuery.WriteString(") AS grouped_query")
		return groupQuery.String(), qb.args
	}

	return query.String(), qb.args
}

func (qb *queryBuilder) joinConditions(conds []whereCondition) string {
	parts := make([]string, len(conds))
	for i, c := range conds {
		parts[i] = c.condition
	}
	return strings.Join(parts, " AND ")
}

func (qb *queryBuilder) Reset() QueryBuilder {
	qb.selectCols = make([]string, 0)
	qb.fromTable = ""
	qb.whereConds = make([]whereCondition, 0)
	qb.joins = make([]joinClause, 0)
	qb.orderByCols = make([]orderClause, 0)
	qb.groupByCols = make([]string, 0)
	qb.havingConds = make([]whereCondition, 0)
	qb.limitVal = nil
	qb.offsetVal = nil
	qb.args = make([]interface{}, 0)
	qb.argCounter = 0
	return qb
}

func (qb *queryBuilder) adjustPlaceholders(condition string, argCount int) string {
	result := condition
	for i := 1; i <= argCount; i++ {
		oldPlaceholder := fmt.Sprintf("$%d", i)
		newPlaceholder := fmt.Sprintf("$%d", qb.argCounter+i)
		result = strings.ReplaceAll(result, oldPlaceholder, newPlaceholder)
	}
	qb.argCounter += argCount
	return result
}

// BaseRepository provides the connection and transaction helpers shared
// by every Store repository. Unlike the multi-tenant original, it holds
// a single *sqlx.DB — the spec's per-item isolation is a partition key
// (product_id), not a connection-routing concern (§5, §9).
type BaseRepository struct {
	db *sqlx.DB
}

func NewBaseRepository(db *sqlx.DB) *BaseRepository {
	return &BaseRepository{db: db}
}

func (br *BaseRepository) DB() *sqlx.DB {
	return br.db
}

// ExecuteInTransaction runs fn inside a transaction, rolling back on panic
// or error and committing otherwise (mirrors database.WithTransaction).
func (br *BaseRepository) ExecuteInTransaction(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := br.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// PaginationHelper provides utilities for pagination.
type PaginationHelper struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func (p *PaginationHelper) GetOffset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

func (p *PaginationHelper) GetLimit() int {
	if p.PageSize <= 0 {
		return 20
	}
	if p.PageSize > 100 {
		return 100
	}
	return p.PageSize
}

func (p *PaginationHelper) CalculateTotalPages(totalCount int) int {
	if totalCount == 0 || p.PageSize <= 0 {
		return 0
	}
	return (totalCount + p.PageSize - 1) / p.PageSize
}

func ValidatePagination(page, pageSize int) *PaginationHelper {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return &PaginationHelper{Page: page, PageSize: pageSize}
}

// MetricsCollector records per-query repository metrics. The one caller
// of WithMetrics (origin UpsertBatch) passes NoOpMetricsCollector;
// pkg/metrics.Collector does not implement this interface.
type MetricsCollector interface {
	RecordQuery(operation string, table string, duration time.Duration, err error)
}

type NoOpMetricsCollector struct{}

func (n *NoOpMetricsCollector) RecordQuery(operation string, table string, duration time.Duration, err error) {
}

func WithMetrics(collector MetricsCollector, operation, table string, fn func() error) error {
	start := time.Now()
	err := fn()
	collector.RecordQuery(operation, table, time.Since(start), err)
	return err
}
