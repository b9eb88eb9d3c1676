package firewall

import (
	"strings"

	"github.com/valyala/fasttemplate"

	"github.com/nftblock/nftblock/internal/config"
)

// ExpandRuleExpr substitutes the template variables of an extra rule
// expression. Expressions without placeholders pass through untouched.
func ExpandRuleExpr(rule *config.ExtraRule, table string) string {
	if !strings.Contains(rule.Expr, "{{") {
		return rule.Expr
	}

	t := fasttemplate.New(rule.Expr, "{{", "}}")
	return t.ExecuteString(map[string]interface{}{
		config.RuleTmplTable: table,
		config.RuleTmplChain: rule.Chain,
		config.RuleTmplSetV4: SetV4,
		config.RuleTmplSetV6: SetV6,
	})
}
