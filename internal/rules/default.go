package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/hookgate/internal/model"
)

// Shell fragments shared by the built-in command patterns.
const (
	cmdStart  = `(?:^|[\s;&|(/])`
	cmdEnd    = `(?:$|[\s;&|)])`
	recursive = `(?:-{1,2}[A-Za-z-]+\s+)*?(?:-[A-Za-z]*[rR][A-Za-z]*|--recursive)(?:\s+-{1,2}[A-Za-z-]+)*\s+(?:--\s+)?`
	quote     = `["']?`
	uninstall = cmdStart + `(?:npm\s+(?:uninstall|remove|rm|un|r)|pnpm\s+(?:remove|rm|uninstall|un)|yarn\s+remove)\s+`
)

// Block tier. These are the irreversible boundaries.
var (
	RecursiveRootDelete = Rule{
		Name:     "recursive-root-delete",
		Severity: model.SevBlock,
		Label:    "rm -rf / (recursive deletion of root directory)",
		Detector: MustPattern(cmdStart + `rm\s+` + recursive + quote + `(?:/\*?|~/?\*?|\$HOME/?|/[^/\s;&|"']+/?\*?)` + quote + cmdEnd),
	}

	RecursiveWorkdirDelete = Rule{
		Name:     "recursive-workdir-delete",
		Severity: model.SevBlock,
		Label:    "rm -rf . (recursive deletion of current or parent directory)",
		Detector: MustPattern(cmdStart + `rm\s+` + recursive + quote + `(?:\.{1,2}/?\*?|\*)` + quote + cmdEnd),
	}

	DropDatabase = Rule{
		Name:     "drop-database",
		Severity: model.SevBlock,
		Label:    "DROP DATABASE/TABLE (database or table deletion)",
		Detector: MustPattern(`(?i)\bdrop\s+(?:database|table|schema)\b`),
	}

	TruncateTable = Rule{
		Name:     "truncate-table",
		Severity: model.SevBlock,
		Label:    "TRUNCATE TABLE (table wipe)",
		Detector: MustPattern(`(?i)\btruncate\s+table\b`),
	}

	FormatDisk = Rule{
		Name:     "format-disk",
		Severity: model.SevBlock,
		Label:    "FORMAT (disk formatting)",
		Detector: MustPattern(`(?i)\bformat\s+[a-z]:`),
	}

	MakeFilesystem = Rule{
		Name:     "make-filesystem",
		Severity: model.SevBlock,
		Label:    "mkfs (filesystem creation)",
		Detector: MustPattern(cmdStart + `mkfs(?:\.[a-z0-9]+)?\s`),
	}

	RawDiskWrite = Rule{
		Name:     "raw-disk-write",
		Severity: model.SevBlock,
		Label:    "direct write to a disk device",
		Detector: MustPattern(`>\s*/dev/(?:sd[a-z]|hd[a-z]|vd[a-z]|xvd[a-z]|nvme\d|mmcblk\d|disk\d)`),
	}

	DiskDump = Rule{
		Name:     "dd-disk-write",
		Severity: model.SevBlock,
		Label:    "dd writing to a disk device",
		Detector: MustPattern(`\bdd\s+.*\bof=/dev/(?:sd|hd|vd|xvd|nvme|mmcblk|disk)`),
	}

	RootLockout = Rule{
		Name:     "root-permission-lockout",
		Severity: model.SevBlock,
		Label:    "chmod 000 / (system lockout)",
		Detector: MustPattern(`\bchmod\s+(?:-[A-Za-z]+\s+)*0*000\s+/` + cmdEnd),
	}

	WorldWritableRoot = Rule{
		Name:     "world-writable-root",
		Severity: model.SevBlock,
		Label:    "chmod -R 777 / (world-writable root)",
		Detector: MustPattern(`\bchmod\s+(?:-[A-Za-z]*R[A-Za-z]*|--recursive)\s+(?:-[A-Za-z]+\s+)*0?777\s+/` + cmdEnd),
	}

	ForkBomb = Rule{
		Name:     "fork-bomb",
		Severity: model.SevBlock,
		Label:    "fork bomb",
		Detector: MustPattern(`:\(\)\s*\{\s*:\s*\|\s*:\s*&\s*\}\s*;\s*:`),
	}
)

// Warn tier. The caller may proceed once the warning is shown.
var (
	SourceFileDelete = Rule{
		Name:     "source-file-delete",
		Severity: model.SevWarn,
		Label:    "deletion of source code files",
		Detector: MustPattern(`(?i)` + cmdStart + `rm\s+(?:\S+\s+)*\S*\.(?:js|ts|py|java|go|rs|vue|jsx|tsx)` + cmdEnd),
	}

	GitHardReset = Rule{
		Name:     "git-hard-reset",
		Severity: model.SevWarn,
		Label:    "git reset --hard (discards uncommitted changes)",
		Detector: MustPattern(`\bgit\s+reset\s+(?:\S+\s+)*--hard\b`),
	}

	GitForceClean = Rule{
		Name:     "git-force-clean",
		Severity: model.SevWarn,
		Label:    "git clean -f (removes untracked files)",
		Detector: MustPattern(`\bgit\s+clean\s+(?:\S+\s+)*(?:-[A-Za-z]*f[A-Za-z]*|--force)\b`),
	}

	PackageUninstall = Rule{
		Name:     "package-uninstall",
		Severity: model.SevWarn,
		Label:    "npm package uninstall",
		Detector: MustPattern(uninstall + `\S`),
	}
)

// DefaultBlock lists the built-in block-tier rules in evaluation order.
var DefaultBlock = []Rule{
	RecursiveRootDelete,
	RecursiveWorkdirDelete,
	DropDatabase,
	TruncateTable,
	FormatDisk,
	MakeFilesystem,
	RawDiskWrite,
	DiskDump,
	RootLockout,
	WorldWritableRoot,
	ForkBomb,
}

// DefaultWarn lists the built-in warn-tier rules in evaluation order.
var DefaultWarn = []Rule{
	SourceFileDelete,
	GitHardReset,
	GitForceClean,
	PackageUninstall,
}

// ProtectedDependency builds a warn rule for removing a load-bearing package.
func ProtectedDependency(pkg string) Rule {
	return Rule{
		Name:     "protected-dependency:" + pkg,
		Severity: model.SevWarn,
		Label:    fmt.Sprintf("removal of core dependency %s", pkg),
		Detector: MustPattern(uninstall + `(?:\S+\s+)*` + regexp.QuoteMeta(pkg) + `(?:$|[\s;&|)@])`),
	}
}

// Destructive builds the destructive-command catalog. Protected packages get
// their own warn rules ahead of the generic uninstall rule.
func Destructive(protected ...string) *Catalog {
	return MustCatalog(assemble(DefaultBlock, DefaultWarn, protected)...)
}

func assemble(block, warn []Rule, protected []string) []Rule {
	out := make([]Rule, 0, len(block)+len(warn)+len(protected))
	out = append(out, block...)

	seen := make(map[string]bool)
	for _, pkg := range protected {
		pkg = strings.TrimSpace(pkg)
		if pkg == "" || seen[pkg] {
			continue
		}
		seen[pkg] = true
		out = append(out, ProtectedDependency(pkg))
	}

	return append(out, warn...)
}
