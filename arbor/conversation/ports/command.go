package convoports

// Kind enumerates the closed set of operations the assistant may request.
// Adding a kind means extending this enum and the dispatcher's switch; there
// is no string-keyed fallthrough.
type Kind int

const (
	KindUnknown Kind = iota
	KindCreateNode
	KindUpdateNode
	KindDeleteNode
	KindGenerateContent
	KindResearch
)

var kindNames = map[Kind]string{
	KindCreateNode:      "create_node",
	KindUpdateNode:      "update_node",
	KindDeleteNode:      "delete_node",
	KindGenerateContent: "generate_content",
	KindResearch:        "research",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind maps a wire-level command name onto the closed enum.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return KindUnknown, false
}

// Command is a structured instruction returned by the assistant gateway.
// Parameters are positional and kind-specific. Commands are never constructed
// by the presentation layer.
type Command struct {
	Kind       Kind     `json:"kind"`
	Parameters []string `json:"parameters"`
}
