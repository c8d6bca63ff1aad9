package gate

import (
	"fmt"
	"strings"

	"github.com/ppiankov/hookgate/internal/capability"
)

// Language selects the message catalog.
type Language string

const (
	LangEnglish Language = "en"
	LangChinese Language = "zh"
)

// ParseLanguage validates a language code. Empty means English.
func ParseLanguage(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case "", LangEnglish:
		return LangEnglish, nil
	case LangChinese:
		return LangChinese, nil
	default:
		return "", fmt.Errorf("unknown language %q (want en or zh)", s)
	}
}

type messages struct {
	refusal     string
	warning     string
	heading     string
	evaluate    string
	listTitle   string
	matched     string
	activate    string
	implement   string
	notice      string
	noticeMatch string
}

var catalogs = map[Language]messages{
	LangEnglish: {
		refusal:   "Dangerous command detected: %s\nCommand: %s\n\nThe operation was blocked. If you really need it, run it manually in a terminal outside the assistant.",
		warning:   "⚠️ Warning: %s\nCommand: %s\n\nPlease confirm this operation is correct.",
		heading:   "## Instruction: mandatory capability activation (must follow)",
		evaluate:  "### Step 1 - Evaluate\nFor each capability below, state: [capability] - yes/no - [reason]",
		listTitle: "Available capabilities:",
		matched:   "Keyword matches in this request: %s",
		activate: "### Step 2 - Activate\n" +
			"If any capability is \"yes\" → activate it now with the Skill() tool\n" +
			"If every capability is \"no\" → state \"no capability needed\" and continue",
		implement:   "### Step 3 - Implement\nOnly start implementing after step 2 is complete.",
		notice:      "💡 Code task detected; the assistant should use the relevant capabilities: %s",
		noticeMatch: "(matched: %s)",
	},
	LangChinese: {
		refusal:   "检测到危险命令: %s\n命令: %s\n\n该操作已被阻止。如果确实需要执行,请手动在终端中执行。",
		warning:   "⚠️ 警告: %s\n命令: %s\n\n请确认此操作是否正确。",
		heading:   "## 指令:强制技能激活流程(必须执行)",
		evaluate:  "### 步骤 1 - 评估\n针对以下每个技能,陈述: [技能名] - 是/否 - [理由]",
		listTitle: "可用技能列表:",
		matched:   "本次请求命中的关键词技能: %s",
		activate: "### 步骤 2 - 激活\n" +
			"如果任何技能为\"是\" → 立即使用 Skill() 工具激活\n" +
			"如果所有技能为\"否\" → 说明\"不需要技能\"并继续",
		implement:   "### 步骤 3 - 实现\n只有在步骤 2 完成后,才能开始实现。",
		notice:      "💡 检测到代码任务,AI 将自动使用相关技能: %s",
		noticeMatch: "(命中: %s)",
	},
}

func messagesFor(lang Language) messages {
	if m, ok := catalogs[lang]; ok {
		return m
	}
	return catalogs[LangEnglish]
}

func (m messages) refuse(label, command string) string {
	return fmt.Sprintf(m.refusal, label, command)
}

func (m messages) warn(label, command string) string {
	return fmt.Sprintf(m.warning, label, command)
}

// instruction enumerates every capability, not only the matched ones.
func (m messages) instruction(caps []capability.Capability, matched []string) string {
	var b strings.Builder
	b.WriteString(m.heading)
	b.WriteString("\n\n")
	b.WriteString(m.evaluate)
	b.WriteString("\n\n")
	b.WriteString(m.listTitle)
	b.WriteString("\n")
	for _, c := range caps {
		if c.Description != "" {
			fmt.Fprintf(&b, "- %s - %s\n", c.Name, c.Description)
		} else {
			fmt.Fprintf(&b, "- %s\n", c.Name)
		}
	}
	if len(matched) > 0 {
		b.WriteString("\n")
		fmt.Fprintf(&b, m.matched, strings.Join(matched, ", "))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.activate)
	b.WriteString("\n\n")
	b.WriteString(m.implement)
	b.WriteString("\n")
	return b.String()
}

func (m messages) advise(names, matched []string) string {
	s := fmt.Sprintf(m.notice, strings.Join(names, ", "))
	if len(matched) > 0 {
		s += " " + fmt.Sprintf(m.noticeMatch, strings.Join(matched, ", "))
	}
	return s
}
