// devtoken emite un JWT firmado con JWT_SECRET para probar la API en local.
//
// Uso: go run ./cmd/devtoken <user_id> [admin|bodeguero|consulta]
// Por defecto el rol es bodeguero.
package main

import (
	"fmt"
	"os"

	"github.com/jhoicas/inventario-tracking/pkg/config"
	"github.com/jhoicas/inventario-tracking/pkg/jwt"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: devtoken <user_id> [admin|bodeguero|consulta]")
		os.Exit(2)
	}
	userID := os.Args[1]
	role := "bodeguero"
	if len(os.Args) > 2 {
		role = os.Args[2]
	}
	switch role {
	case "admin", "bodeguero", "consulta":
	default:
		fmt.Fprintf(os.Stderr, "rol desconocido: %s\n", role)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	token, err := jwt.Generate(cfg.JWT.Secret, userID, role, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
