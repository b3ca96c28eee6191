package router

// Console routes.
const (
	PathDashboard = "/"
	PathChat      = "/chat"
	PathPolicy    = "/policy"

	NameDashboard = "仪表盘"
	NameChat      = "对话游乐场"
	NamePolicy    = "安全策略"
)

// Default builds the console table: "/" Dashboard, "/chat" Chat,
// "/policy" Policy, served under base.
func Default[V any](base string, dashboard, chat, policy V) (*Table[V], error) {
	return New(base,
		Route[V]{Path: PathDashboard, Name: NameDashboard, View: dashboard},
		Route[V]{Path: PathChat, Name: NameChat, View: chat},
		Route[V]{Path: PathPolicy, Name: NamePolicy, View: policy},
	)
}
