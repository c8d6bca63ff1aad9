package capability

// Defaults returns the built-in capability list.
func Defaults() []Capability {
	return []Capability{
		{
			Name:        "data-access-layer",
			Description: "schemas, queries, repositories and migrations",
			Keywords: []string{
				"database", "sql", "query", "repository", "dao", "mapper", "orm", "migration", "schema",
				"数据库", "数据表", "表结构", "查询", "持久化",
			},
		},
		{
			Name:        "api-layer",
			Description: "endpoints, routing, controllers and handlers",
			Keywords: []string{
				"api", "endpoint", "route", "controller", "handler", "rest", "graphql", "grpc",
				"接口", "路由", "控制器",
			},
		},
		{
			Name:        "ui-layer",
			Description: "pages, components, layout and styling",
			Keywords: []string{
				"page", "component", "view", "layout", "form", "button", "style", "css",
				"页面", "组件", "界面", "表单", "样式",
			},
		},
		{
			Name:        "error-handling",
			Description: "error propagation, retries and fallbacks",
			Keywords: []string{
				"error", "exception", "panic", "retry", "fallback",
				"异常", "错误", "报错",
			},
		},
		{
			Name:        "security-guard",
			Description: "authentication, authorization and input hardening",
			Keywords: []string{
				"auth", "login", "permission", "token", "password", "encrypt", "xss", "csrf",
				"权限", "登录", "认证", "加密", "安全",
			},
		},
		{
			Name:        "performance",
			Description: "profiling, caching and latency work",
			Keywords: []string{
				"performance", "slow", "cache", "optimize", "latency", "memory leak",
				"性能", "缓存", "优化", "卡顿",
			},
		},
	}
}
