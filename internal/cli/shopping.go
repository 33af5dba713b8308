package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
)

// NewShoppingListCommand creates the shopping-list command, which prints a
// user's aggregated shopping list in the download format.
func NewShoppingListCommand(opts *RootOptions) *cobra.Command {
	var (
		user   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "shopping-list",
		Short: "Export a user's shopping list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd, opts)
			if err != nil {
				return err
			}
			defer e.Close()

			userID, err := lookupUser(e.db.DB, user)
			if err != nil {
				return err
			}

			body, err := service.NewShoppingListService(e.db.DB).Export(cmd.Context(), userID)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			return os.WriteFile(output, body, 0o644)
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "user id, username or email")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func lookupUser(db *gorm.DB, ref string) (uuid.UUID, error) {
	var user models.User
	q := db.Select("id")
	if id, err := uuid.Parse(ref); err == nil {
		q = q.Where("id = ?", id)
	} else {
		q = q.Where("username = ? OR email = ?", ref, ref)
	}

	if err := q.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, fmt.Errorf("user %q not found", ref)
		}
		return uuid.Nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user.ID, nil
}
