package service

import "errors"

// ErrInvalidArgument 参数验证失败，Handler 层映射为 HTTP 400
// Repository 层的哨兵错误（ErrNotFound 等）由各 Service 透传，同样在 Handler 层映射状态码
var ErrInvalidArgument = errors.New("invalid argument")
