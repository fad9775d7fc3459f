package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/quka-ai/moodjournal/pkg/types"
)

func ErrorSqlBuild(err error) error {
	return fmt.Errorf("failed to build sql query, %w", err)
}

type SqlProviderAchieve interface {
	GetMaster() *sqlx.DB
	GetReplica() *sqlx.DB
	GetTxFromCtx(ctx context.Context) *sqlx.Tx
}

type Master interface {
	Exec(query string, args ...any) (sql.Result, error)
}

type Replica interface {
	Get(dest any, query string, args ...any) error
	Select(dest any, query string, args ...any) error
	Queryx(query string, args ...any) (*sqlx.Rows, error)
	QueryRowx(query string, args ...any) *sqlx.Row
}

// querier 同时满足 Master 与 Replica, 事务中的 *sqlx.Tx 也满足
type querier interface {
	Master
	Replica
}

// CommonFields 每个 store 共用的表名, 列与连接
type CommonFields struct {
	table      string
	provider   SqlProviderAchieve
	allColumns []string
}

func (c *CommonFields) SetTable(table types.TableName) {
	c.table = table.Name()
}

func (c *CommonFields) GetTable() string {
	return c.table
}

func (c *CommonFields) SetAllColumns(columns ...string) {
	c.allColumns = columns
}

func (c *CommonFields) GetAllColumns() []string {
	return c.allColumns
}

func (c *CommonFields) SetProvider(p SqlProviderAchieve) {
	c.provider = p
}

// conn 优先使用 ctx 中的事务
func (c *CommonFields) conn(ctx context.Context, db *sqlx.DB) querier {
	if ctx == nil {
		return db
	}
	if tx := c.provider.GetTxFromCtx(ctx); tx != nil {
		return tx
	}
	return ctxDB{db: db, ctx: ctx}
}

func (c *CommonFields) GetMaster(ctx context.Context) Master {
	return c.conn(ctx, c.provider.GetMaster())
}

func (c *CommonFields) GetReplica(ctx context.Context) Replica {
	return c.conn(ctx, c.provider.GetReplica())
}

type ctxDB struct {
	db  *sqlx.DB
	ctx context.Context
}

func (d ctxDB) Get(dest any, query string, args ...any) error {
	return d.db.GetContext(d.ctx, dest, query, args...)
}

func (d ctxDB) Select(dest any, query string, args ...any) error {
	return d.db.SelectContext(d.ctx, dest, query, args...)
}

func (d ctxDB) Queryx(query string, args ...any) (*sqlx.Rows, error) {
	return d.db.QueryxContext(d.ctx, query, args...)
}

func (d ctxDB) QueryRowx(query string, args ...any) *sqlx.Row {
	return d.db.QueryRowxContext(d.ctx, query, args...)
}

func (d ctxDB) Exec(query string, args ...any) (sql.Result, error) {
	return d.db.ExecContext(d.ctx, query, args...)
}

// exec 构建并在主库(或 ctx 中的事务)上执行写语句
func (c *CommonFields) exec(ctx context.Context, query sq.Sqlizer) error {
	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}
	_, err = c.GetMaster(ctx).Exec(queryString, args...)
	return err
}
