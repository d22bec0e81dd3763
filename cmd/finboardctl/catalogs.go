package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"finboard/internal/core"
	"finboard/internal/services"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <kind>",
		Short: "List accounts, categories or payment methods",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(a *app) error {
				out := cmd.OutOrStdout()
				switch kind {
				case core.KindAccount:
					return listRecords(cmd.Context(), out, a.accounts, func(acc core.Account) string {
						return acc.Type.Label() + "\t" + core.FormatAmount(acc.Balance)
					}, "Type", "Balance")
				case core.KindCategory:
					return listRecords(cmd.Context(), out, a.categories, func(c core.Category) string {
						return c.Type.Label()
					}, "Type")
				default:
					return listRecords(cmd.Context(), out, a.paymentMethods, func(p core.PaymentMethod) string {
						return p.Icon.Label()
					}, "Icon")
				}
			})
		},
	}
}

// listRecords prints presets first, then custom records.
func listRecords[T core.Record[T]](ctx context.Context, out io.Writer, svc *services.Catalog[T], detail func(T) string, detailHeaders ...string) error {
	defaults, custom, err := svc.Partition(ctx)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}
	if len(defaults)+len(custom) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No records found."))
		return nil
	}
	headers := append([]string{"ID", "Name"}, detailHeaders...)
	headers = append(headers, "Origin")
	t := newTable(out, headers...)
	for _, rec := range append(defaults, custom...) {
		t.row(rec.Key(), rec.Label(), detail(rec), presetLabel(rec.Preset()))
	}
	return t.flush()
}

// recordFlags holds every catalog field; each kind reads the ones it has.
type recordFlags struct {
	name    string
	typ     string
	balance string
	icon    string
}

func (f *recordFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "display name")
	cmd.Flags().StringVar(&f.typ, "type", "", "account type (checking, savings, credit, investment, cash) or category type (income, expense)")
	cmd.Flags().StringVar(&f.balance, "balance", "", "account balance")
	cmd.Flags().StringVar(&f.icon, "icon", "", "payment method icon (credit-card, wallet, banknote)")
}

func (f *recordFlags) account(cmd *cobra.Command, base core.Account) (core.Account, error) {
	if cmd.Flags().Changed("name") {
		base.Name = f.name
	}
	if cmd.Flags().Changed("type") {
		t, err := core.ParseAccountType(f.typ)
		if err != nil {
			return base, err
		}
		base.Type = t
	}
	if cmd.Flags().Changed("balance") {
		base.Balance = core.ParseBalance(f.balance)
	}
	if !base.Type.IsValid() {
		base.Type = core.AccountChecking
	}
	return base, nil
}

func (f *recordFlags) category(cmd *cobra.Command, base core.Category) (core.Category, error) {
	if cmd.Flags().Changed("name") {
		base.Name = f.name
	}
	if cmd.Flags().Changed("type") {
		t, err := core.ParseCategoryType(f.typ)
		if err != nil {
			return base, err
		}
		base.Type = t
	}
	if !base.Type.IsValid() {
		base.Type = core.CategoryExpense
	}
	return base, nil
}

func (f *recordFlags) paymentMethod(cmd *cobra.Command, base core.PaymentMethod) (core.PaymentMethod, error) {
	if cmd.Flags().Changed("name") {
		base.Name = f.name
	}
	if cmd.Flags().Changed("icon") {
		i, err := core.ParsePaymentIcon(f.icon)
		if err != nil {
			return base, err
		}
		base.Icon = i
	}
	if !base.Icon.IsValid() {
		base.Icon = core.IconCreditCard
	}
	return base, nil
}

func addCmd() *cobra.Command {
	var flags recordFlags
	cmd := &cobra.Command{
		Use:   "add <kind>",
		Short: "Add a custom record",
		Example: `  finboardctl add account --name "Wallet" --type cash --balance 150
  finboardctl add category --name "Books" --type expense
  finboardctl add payment-method --name "Gift Card" --icon wallet`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(a *app) error {
				ctx := cmd.Context()
				var id string
				switch kind {
				case core.KindAccount:
					rec, err := flags.account(cmd, core.Account{})
					if err != nil {
						return err
					}
					added, err := a.accounts.Add(ctx, rec)
					if err != nil {
						return declined(err)
					}
					id = added.ID
				case core.KindCategory:
					rec, err := flags.category(cmd, core.Category{})
					if err != nil {
						return err
					}
					added, err := a.categories.Add(ctx, rec)
					if err != nil {
						return declined(err)
					}
					id = added.ID
				default:
					rec, err := flags.paymentMethod(cmd, core.PaymentMethod{})
					if err != nil {
						return err
					}
					added, err := a.paymentMethods.Add(ctx, rec)
					if err != nil {
						return declined(err)
					}
					id = added.ID
				}
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Added %s %s", kind, id)))
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func editCmd() *cobra.Command {
	var flags recordFlags
	cmd := &cobra.Command{
		Use:   "edit <kind> <id>",
		Short: "Change fields of an existing record",
		Long:  `Only the flags given are changed; the rest of the record is kept.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			id := args[1]
			return withApp(cmd.Context(), func(a *app) error {
				var found bool
				switch kind {
				case core.KindAccount:
					found, err = editRecord(cmd.Context(), a.accounts, id, func(base core.Account) (core.Account, error) {
						return flags.account(cmd, base)
					})
				case core.KindCategory:
					found, err = editRecord(cmd.Context(), a.categories, id, func(base core.Category) (core.Category, error) {
						return flags.category(cmd, base)
					})
				default:
					found, err = editRecord(cmd.Context(), a.paymentMethods, id, func(base core.PaymentMethod) (core.PaymentMethod, error) {
						return flags.paymentMethod(cmd, base)
					})
				}
				if err != nil {
					return declined(err)
				}
				if !found {
					return fmt.Errorf("no %s with id %q", kind, id)
				}
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Updated %s %s", kind, id)))
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func editRecord[T core.Record[T]](ctx context.Context, svc *services.Catalog[T], id string, apply func(T) (T, error)) (bool, error) {
	existing, ok, err := svc.Get(ctx, id)
	if err != nil || !ok {
		return false, err
	}
	updated, err := apply(existing)
	if err != nil {
		return true, err
	}
	return svc.Edit(ctx, updated)
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <kind> <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			id := args[1]
			return withApp(cmd.Context(), func(a *app) error {
				var removed bool
				switch kind {
				case core.KindAccount:
					removed, err = a.accounts.Delete(cmd.Context(), id)
				case core.KindCategory:
					removed, err = a.categories.Delete(cmd.Context(), id)
				default:
					removed, err = a.paymentMethods.Delete(cmd.Context(), id)
				}
				if err != nil {
					return err
				}
				if !removed {
					fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render(fmt.Sprintf("No %s with id %s, nothing deleted", kind, id)))
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Deleted %s %s", kind, id)))
				return nil
			})
		},
	}
}

// declined turns a blank-name rejection into a readable CLI error.
func declined(err error) error {
	if errors.Is(err, core.ErrEmptyName) {
		return errors.New("name must not be blank")
	}
	return err
}
