package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Находки правил
	RulInfo    Code = 1000
	RulFinding Code = 1001
	RulFailed  Code = 1002

	// Ошибки конфигурации
	CfgInfo              Code = 2000
	CfgBadReportTarget   Code = 2001
	CfgBadReportMessage  Code = 2002
	CfgMalformedResource Code = 2003
	CfgBadProjectConfig  Code = 2004

	// Ошибки компиляции шаблонов
	CmpInfo        Code = 3000
	CmpBadTemplate Code = 3001
	CmpBadRegex    Code = 3002

	// Ввод-вывод
	IOInfo          Code = 4000
	IOLoadFileError Code = 4001
	IOCacheError    Code = 4002

	// Внутренние
	IntInfo      Code = 9000
	IntRulePanic Code = 9001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:          "Unknown error",
		RulInfo:              "Rule information",
		RulFinding:           "Rule finding",
		RulFailed:            "Rule returned an error",
		CfgInfo:              "Configuration information",
		CfgBadReportTarget:   "Report target must be a pattern or a string",
		CfgBadReportMessage:  "Report message must be a string",
		CfgMalformedResource: "Malformed rule resource",
		CfgBadProjectConfig:  "Invalid project configuration",
		CmpInfo:              "Compile information",
		CmpBadTemplate:       "Template does not compile",
		CmpBadRegex:          "Regular expression does not compile",
		IOInfo:               "I/O information",
		IOLoadFileError:      "I/O load file error",
		IOCacheError:         "Result cache error",
		IntInfo:              "Internal information",
		IntRulePanic:         "Rule panicked",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("RUL%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("CMP%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 9000 && ic < 10000:
		return fmt.Sprintf("INT%04d", ic)
	}
	return "E0000"
}

// IsConfig reports whether c belongs to the configuration family.
func (c Code) IsConfig() bool { return c >= 2000 && c < 3000 }

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
