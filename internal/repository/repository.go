// Package repository 数据访问层：基于 database/sql + lib/pq 的手写 SQL 实现，
// 以及 DB 关闭时使用的内存实现。Repository 只做数据访问，不做业务校验。
package repository

import "errors"

// 数据层哨兵错误（Service 层用 errors.Is 判断后映射为 HTTP 状态码）
var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateMLS  = errors.New("duplicate mls number")
	ErrDuplicateSlug = errors.New("duplicate slug")
	ErrProjectGone   = errors.New("project does not exist") // units.project_id 外键失败
)

// pq 错误码
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)
