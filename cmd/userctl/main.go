// Command userctl sirve la API de usuarios y expone operaciones de
// mantenimiento (migraciones, alta y consulta de usuarios, seed) sobre el
// store configurado.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
