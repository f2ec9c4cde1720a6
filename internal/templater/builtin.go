package templater

// Names of the built-in template aliases.
const (
	BuiltinLogCompact   = "builtin_log_compact"
	BuiltinLogOneline   = "builtin_log_oneline"
	BuiltinLogDetailed  = "builtin_log_detailed"
	BuiltinLogNode      = "builtin_log_node"
	BuiltinLogNodeASCII = "builtin_log_node_ascii"
)

const noDescription = `label("empty", "(no description set)")`

var builtinAliases = map[string]string{
	BuiltinLogCompact: `${label("id", short_id)} ${label("author", author.email)} ${label("timestamp", committer.timestamp)}%{ for r in refs } ${label("refs", r)}%{ endfor }
${summary != "" ? summary : ` + noDescription + `}
`,
	BuiltinLogOneline: `${label("id", short_id)} ${summary != "" ? summary : ` + noDescription + `}%{ for r in refs } ${label("refs", r)}%{ endfor }
`,
	BuiltinLogDetailed: `Commit ID: ${label("id", id)}
%{ for p in parents }Parent: ${p}
%{ endfor }Author: ${author.name} <${author.email}> (${label("timestamp", author.timestamp)})
Committer: ${committer.name} <${committer.email}> (${label("timestamp", committer.timestamp)})
%{ if length(refs) > 0 }Refs: ${join(", ", refs)}
%{ endif }
    ${description != "" ? indent(4, chomp(description)) : ` + noDescription + `}

`,
	BuiltinLogNode:      `${current ? label("current", "@") : (root ? "◆" : "○")}`,
	BuiltinLogNodeASCII: `${current ? label("current", "@") : (root ? "#" : "o")}`,
}
