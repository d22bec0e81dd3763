package http

import (
	"finboard/internal/core"
	"finboard/internal/services"
)

type fieldView struct {
	Name    string
	Label   string
	Value   string
	Options []optionView
}

type optionView struct {
	Value    string
	Label    string
	Selected bool
}

func textField(name, label, value string) fieldView {
	return fieldView{Name: name, Label: label, Value: value}
}

func accountRoutes(svc *services.Catalog[core.Account]) catalogRoutes[core.Account] {
	return catalogRoutes[core.Account]{
		kind:  core.KindAccount,
		slug:  "accounts",
		title: "Accounts",
		noun:  "Account",
		svc:   svc,
		fields: func(a core.Account) []fieldView {
			balance := ""
			if a.ID != "" {
				balance = a.Balance.StringFixed(2)
			}
			current := a.Type
			if !current.IsValid() {
				current = core.AccountChecking
			}
			opts := make([]optionView, 0, len(core.AccountTypes()))
			for _, t := range core.AccountTypes() {
				opts = append(opts, optionView{Value: t.String(), Label: t.Label(), Selected: t == current})
			}
			return []fieldView{
				textField("name", "Name", a.Name),
				{Name: "type", Label: "Type", Options: opts},
				textField("balance", "Balance", balance),
			}
		},
		detail: func(a core.Account) string {
			return a.Type.Label() + " · " + core.FormatAmount(a.Balance)
		},
		identity: func(a core.Account) core.Account {
			return core.Account{ID: a.ID, IsDefault: a.IsDefault}
		},
		decode: func(p *RequestBodyParser, a core.Account) core.Account {
			if p.Has("name") {
				a.Name = p.Get("name")
			}
			if p.Has("type") {
				a.Type = orDefault(core.ParseAccountType, p.Get("type"), core.AccountChecking)
			}
			if p.Has("balance") {
				a.Balance = core.ParseBalance(p.Get("balance"))
			}
			if !a.Type.IsValid() {
				a.Type = core.AccountChecking
			}
			return a
		},
	}
}

func categoryRoutes(svc *services.Catalog[core.Category]) catalogRoutes[core.Category] {
	return catalogRoutes[core.Category]{
		kind:  core.KindCategory,
		slug:  "categories",
		title: "Categories",
		noun:  "Category",
		svc:   svc,
		fields: func(c core.Category) []fieldView {
			current := c.Type
			if !current.IsValid() {
				current = core.CategoryExpense
			}
			opts := make([]optionView, 0, len(core.CategoryTypes()))
			for _, t := range core.CategoryTypes() {
				opts = append(opts, optionView{Value: t.String(), Label: t.Label(), Selected: t == current})
			}
			return []fieldView{
				textField("name", "Name", c.Name),
				{Name: "type", Label: "Type", Options: opts},
			}
		},
		detail: func(c core.Category) string { return c.Type.Label() },
		identity: func(c core.Category) core.Category {
			return core.Category{ID: c.ID, IsDefault: c.IsDefault}
		},
		decode: func(p *RequestBodyParser, c core.Category) core.Category {
			if p.Has("name") {
				c.Name = p.Get("name")
			}
			if p.Has("type") {
				c.Type = orDefault(core.ParseCategoryType, p.Get("type"), core.CategoryExpense)
			}
			if !c.Type.IsValid() {
				c.Type = core.CategoryExpense
			}
			return c
		},
	}
}

func paymentMethodRoutes(svc *services.Catalog[core.PaymentMethod]) catalogRoutes[core.PaymentMethod] {
	return catalogRoutes[core.PaymentMethod]{
		kind:  core.KindPaymentMethod,
		slug:  "payment-methods",
		title: "Payment Methods",
		noun:  "Payment method",
		svc:   svc,
		fields: func(m core.PaymentMethod) []fieldView {
			current := m.Icon
			if !current.IsValid() {
				current = core.IconCreditCard
			}
			opts := make([]optionView, 0, len(core.PaymentIcons()))
			for _, i := range core.PaymentIcons() {
				opts = append(opts, optionView{Value: i.String(), Label: i.Label(), Selected: i == current})
			}
			return []fieldView{
				textField("name", "Name", m.Name),
				{Name: "icon", Label: "Icon", Options: opts},
			}
		},
		detail: func(m core.PaymentMethod) string { return m.Icon.Label() },
		identity: func(m core.PaymentMethod) core.PaymentMethod {
			return core.PaymentMethod{ID: m.ID, IsDefault: m.IsDefault}
		},
		decode: func(p *RequestBodyParser, m core.PaymentMethod) core.PaymentMethod {
			if p.Has("name") {
				m.Name = p.Get("name")
			}
			if p.Has("icon") {
				m.Icon = orDefault(core.ParsePaymentIcon, p.Get("icon"), core.IconCreditCard)
			}
			if !m.Icon.IsValid() {
				m.Icon = core.IconCreditCard
			}
			return m
		},
	}
}

// orDefault parses an enum value, falling back to the form default.
func orDefault[E any](parse func(string) (E, error), s string, def E) E {
	v, err := parse(s)
	if err != nil {
		return def
	}
	return v
}
