package blob

import (
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// The backend implementations under internal/infra/blob are wrapped by
// this package; nothing else may import them directly.
func TestBackendImportsStayBehindFacade(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports}
	pkgs, err := packages.Load(cfg, "github.com/ErichSuter/fmu-dataio/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		t.Fatal("packages loaded with errors")
	}

	const backendPrefix = "github.com/ErichSuter/fmu-dataio/internal/infra/blob"
	const facade = "github.com/ErichSuter/fmu-dataio/internal/blob"
	for _, pkg := range pkgs {
		if pkg.PkgPath == facade || strings.HasPrefix(pkg.PkgPath, backendPrefix) {
			continue
		}
		for imp := range pkg.Imports {
			if strings.HasPrefix(imp, backendPrefix) {
				t.Errorf("%s imports %s directly; go through internal/blob", pkg.PkgPath, imp)
			}
		}
	}
}
