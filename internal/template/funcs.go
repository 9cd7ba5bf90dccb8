package template

// knownFunctions is the fixed catalogue used for function-call extraction.
// It covers the template language builtins plus the chart helper functions
// the reference tool recognizes. Extraction is a membership test over action
// words, not a call-site parse.
var knownFunctions = map[string]bool{
	// builtins
	"and": true, "call": true, "html": true, "index": true, "slice": true,
	"js": true, "len": true, "not": true, "or": true, "print": true,
	"printf": true, "println": true, "urlquery": true,
	"eq": true, "ne": true, "lt": true, "le": true, "gt": true, "ge": true,

	// chart engine additions
	"include": true, "required": true, "tpl": true, "lookup": true,
	"fail": true, "toYaml": true, "fromYaml": true, "toJson": true,
	"fromJson": true, "toToml": true,

	// string helpers
	"quote": true, "squote": true, "trim": true, "trimAll": true,
	"trimPrefix": true, "trimSuffix": true, "upper": true, "lower": true,
	"title": true, "untitle": true, "repeat": true, "substr": true,
	"nospace": true, "trunc": true, "abbrev": true, "initials": true,
	"snakecase": true, "camelcase": true, "kebabcase": true,
	"replace": true, "contains": true, "hasPrefix": true, "hasSuffix": true,
	"indent": true, "nindent": true, "cat": true, "wrap": true,
	"b64enc": true, "b64dec": true, "sha256sum": true, "randAlphaNum": true,

	// data structure helpers
	"default": true, "empty": true, "coalesce": true, "ternary": true,
	"dict": true, "list": true, "merge": true, "mergeOverwrite": true,
	"get": true, "set": true, "unset": true, "hasKey": true, "keys": true,
	"values": true, "pick": true, "omit": true, "deepCopy": true,
	"first": true, "rest": true, "last": true, "initial": true,
	"append": true, "prepend": true, "concat": true, "reverse": true,
	"uniq": true, "without": true, "has": true, "compact": true,
	"sortAlpha": true, "splitList": true, "join": true, "split": true,

	// math and misc
	"add": true, "sub": true, "mul": true, "div": true, "mod": true,
	"max": true, "min": true, "ceil": true, "floor": true, "round": true,
	"int": true, "int64": true, "float64": true, "toString": true,
	"now": true, "date": true, "dateInZone": true, "ago": true,
	"semver": true, "semverCompare": true, "regexMatch": true,
	"regexFindAll": true, "regexFind": true, "regexReplaceAll": true,
	"regexSplit": true, "uuidv4": true, "until": true, "untilStep": true,
}

// IsKnownFunction reports whether name is in the function catalogue.
func IsKnownFunction(name string) bool {
	return knownFunctions[name]
}
