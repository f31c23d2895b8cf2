package repository

import (
	"database/sql"
	"encoding/json"
)

// jsonbArg JSONB 写入参数：空内容写入给定默认值（'{}' 或 '[]'）
func jsonbArg(raw json.RawMessage, def string) string {
	if len(raw) == 0 {
		return def
	}
	return string(raw)
}

// nullStringToAny sql.NullString 转 SQL 参数（无效时写 NULL）
func nullStringToAny(ns sql.NullString) any {
	if !ns.Valid {
		return nil
	}
	return ns.String
}

// nullFloatToAny sql.NullFloat64 转 SQL 参数（无效时写 NULL）
func nullFloatToAny(nf sql.NullFloat64) any {
	if !nf.Valid {
		return nil
	}
	return nf.Float64
}
