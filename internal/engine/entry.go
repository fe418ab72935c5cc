package engine

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// RegistryGlobal is the global object requirable modules are registered on.
const RegistryGlobal = "__panelsModules"

// registryEntry generates the synthetic entry module. It imports the app and
// every required module and registers each under its public name, then
// installs a require function that serves the registry and falls back to the
// host's require for everything else (externals).
func registryEntry(entry, expose string, requires []string) string {
	var b strings.Builder
	modules := append([]string{entry}, requires...)
	names := append([]string{expose}, requires...)

	for i, m := range modules {
		fmt.Fprintf(&b, "import * as m%d from %s;\n", i, quote(m))
	}
	fmt.Fprintf(&b, "var registry = globalThis.%s = globalThis.%s || {};\n", RegistryGlobal, RegistryGlobal)
	for i, n := range names {
		fmt.Fprintf(&b, "registry[%s] = m%d;\n", quote(n), i)
	}
	b.WriteString(`var hostRequire = globalThis.require;
globalThis.require = function (name) {
  if (Object.prototype.hasOwnProperty.call(registry, name)) return registry[name];
  if (typeof hostRequire === "function") return hostRequire(name);
  throw new Error("Cannot find module '" + name + "'");
};
`)
	return b.String()
}

// entryImport returns the import specifier for entry as seen from dir. Entries
// under dir are imported relatively so no absolute path reaches the source map.
func entryImport(dir, entry string) string {
	rel, err := filepath.Rel(dir, entry)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(entry)
	}
	return "./" + filepath.ToSlash(rel)
}

func quote(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}
