package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrStoreUnavailable 存储不可用：数据库或缓存连接异常
var ErrStoreUnavailable = errors.New("存储服务暂不可用")

// ErrSnapshotNotValidated 目标快照未通过校验，不能设为工作排课
var ErrSnapshotNotValidated = errors.New("快照未通过校验")
