package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jhoicas/agencia-ledger/pkg/config"
	pkgjwt "github.com/jhoicas/agencia-ledger/pkg/jwt"
)

// TokenCmd emite un token firmado con JWT_SECRET para operar la API (cuentas de servicio,
// soporte). Solo imprime el token para poder usarlo en scripts.
type TokenCmd struct {
	User    string `help:"ID del usuario; queda como autor de los movimientos." required:""`
	Agency  string `help:"ID de la agencia." required:""`
	Role    string `help:"Rol del token." enum:"admin,finanzas,ventas" default:"finanzas"`
	Expires int    `help:"Vigencia en minutos (0 = JWT_EXPIRATION_MINUTES)." default:"0"`
}

func (cmd *TokenCmd) Run(globals *Globals) error {
	cfg, _, err := globals.setup()
	if err != nil {
		return err
	}
	return cmd.issue(cfg.JWT, globals.stdout())
}

func (cmd *TokenCmd) issue(cfg config.JWTConfig, w io.Writer) error {
	user := strings.TrimSpace(cmd.User)
	agency := strings.TrimSpace(cmd.Agency)
	if user == "" || agency == "" {
		return fmt.Errorf("--user y --agency son obligatorios")
	}
	minutes := cmd.Expires
	if minutes <= 0 {
		minutes = cfg.Expiration
	}
	token, err := pkgjwt.Generate(cfg.Secret, user, agency, cmd.Role, cfg.Issuer, minutes)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, token)
	return err
}
