package types

import "fmt"

type TableName string

func (s TableName) Name() string {
	return fmt.Sprintf("%s%s", TABLE_PREFIX, s)
}

const TABLE_PREFIX = "mj_"

const (
	TABLE_USER          = TableName("user")
	TABLE_ACCESS_TOKEN  = TableName("access_token")
	TABLE_JOURNAL_ENTRY = TableName("journal_entry")
)
