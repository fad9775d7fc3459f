package safe

import (
	"log/slog"
	"runtime/debug"
	"strings"
)

const maxStackLines = 40

// Run 执行 fn, panic 会被记录而不会导致进程退出
func Run(component string, fn func()) (panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			slog.Error("panic recovered",
				slog.Any("recover", r),
				slog.String("component", component),
				slog.String("stack", stack()),
			)
		}
	}()

	fn()
	return false
}

// Go 在新的 goroutine 中执行 Run
func Go(component string, fn func()) {
	go Run(component, fn)
}

func stack() string {
	lines := strings.Split(strings.TrimSpace(string(debug.Stack())), "\n")
	// 第一行是 goroutine 头, 之后每两行一帧, 跳过 debug.Stack, stack 与 Run 的 defer
	if len(lines) > 7 {
		lines = append(lines[:1], lines[7:]...)
	}
	if len(lines) > maxStackLines {
		lines = append(lines[:maxStackLines], "... (truncated)")
	}
	return strings.Join(lines, "\n")
}
