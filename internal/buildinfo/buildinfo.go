package buildinfo

// Set via -ldflags at release time.
var (
    Version = "dev"
    Commit  = ""
    BuiltAt = ""
)

func Info() map[string]string {
    return map[string]string{
        "name":    "initinere-agent",
        "version": Version,
        "commit":  Commit,
        "builtAt": BuiltAt,
    }
}
