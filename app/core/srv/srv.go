package srv

type Srv struct {
	ai *AI
}

type ApplyFunc func(s *Srv)

func SetupSrvs(opts ...ApplyFunc) *Srv {
	a := &Srv{
		ai: NewAI(),
	}

	for _, opt := range opts {
		opt(a)
	}
	return a
}

func ApplyAI(cfg AIConfig, metrics AIMetrics) ApplyFunc {
	return func(s *Srv) {
		a, err := SetupAI(cfg, metrics)
		if err != nil {
			panic(err)
		}
		s.ai = a
	}
}

// ApplyAIInstance 直接使用外部创建的 AI, 测试时注入假驱动
func ApplyAIInstance(a *AI) ApplyFunc {
	return func(s *Srv) {
		s.ai = a
	}
}

func (s *Srv) AI() AIGateway {
	return s.ai
}

// GetAIStatus 获取AI系统状态
func (s *Srv) GetAIStatus() map[string]bool {
	return s.ai.Status()
}
