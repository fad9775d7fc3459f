// Package register 收集各个 store 在 init 阶段注册的构造函数, 由 provider 统一调用
package register

import "sync"

type Handler[T any] func(T)

var (
	mu       sync.RWMutex
	handlers = map[any][]any{}
)

func RegisterFunc[T any](key any, handler Handler[T]) {
	mu.Lock()
	defer mu.Unlock()
	handlers[key] = append(handlers[key], handler)
}

// ResolveFuncHandlers 按注册顺序返回 key 下类型匹配的 handler
func ResolveFuncHandlers[T any](key any) []Handler[T] {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]Handler[T], 0, len(handlers[key]))
	for _, v := range handlers[key] {
		if h, ok := v.(Handler[T]); ok {
			result = append(result, h)
		}
	}
	return result
}
