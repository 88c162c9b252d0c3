package token

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-extras/cobraflags"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"regportal-go/config"
	"regportal-go/models"
	"regportal-go/utils"
)

const (
	userIDFlag = "user-id"
	roleFlag   = "role"
	bankIDFlag = "bank-id"
	emailFlag  = "email"
	ttlFlag    = "ttl"
)

var tokenFlags = map[string]cobraflags.Flag{
	userIDFlag: &cobraflags.StringFlag{
		Name:  userIDFlag,
		Value: "",
		Usage: "User id carried in the token (required)",
	},
	roleFlag: &cobraflags.StringFlag{
		Name:  roleFlag,
		Value: models.RoleBank,
		Usage: "Role: bank or regulator",
	},
	bankIDFlag: &cobraflags.StringFlag{
		Name:  bankIDFlag,
		Value: "",
		Usage: "Bank id for bank users",
	},
	emailFlag: &cobraflags.StringFlag{
		Name:  emailFlag,
		Value: "",
		Usage: "Email carried in the token",
	},
	ttlFlag: &cobraflags.StringFlag{
		Name:  ttlFlag,
		Value: "24h",
		Usage: "Token lifetime",
	},
}

// NewTokenCommand issues bearer tokens signed with JWT_SECRET. Login is
// handled by another system; this exists for development and integration.
func NewTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed bearer token",
		RunE:  tokenCommand,
	}
	cobraflags.RegisterMap(cmd, tokenFlags)
	return cmd
}

func tokenCommand(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()
	cfg := config.Load()
	if err := utils.InitializeJWT(cfg.JWTSecret); err != nil {
		return err
	}

	userID, err := strconv.ParseUint(tokenFlags[userIDFlag].GetString(), 10, 64)
	if err != nil || userID == 0 {
		return fmt.Errorf("--%s must be a positive integer", userIDFlag)
	}

	role := tokenFlags[roleFlag].GetString()
	if role != models.RoleBank && role != models.RoleRegulator {
		return fmt.Errorf("--%s must be %s or %s", roleFlag, models.RoleBank, models.RoleRegulator)
	}

	var bankID *uint
	if raw := tokenFlags[bankIDFlag].GetString(); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("--%s must be a positive integer", bankIDFlag)
		}
		b := uint(id)
		bankID = &b
	}
	if role == models.RoleBank && bankID == nil {
		return fmt.Errorf("--%s is required for bank users", bankIDFlag)
	}

	ttl, err := time.ParseDuration(tokenFlags[ttlFlag].GetString())
	if err != nil {
		return fmt.Errorf("invalid --%s: %w", ttlFlag, err)
	}

	token, err := utils.GenerateToken(uint(userID), tokenFlags[emailFlag].GetString(), role, bankID, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
