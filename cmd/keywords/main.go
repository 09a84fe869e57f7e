// Keywords matches user text against the Koko sensitive-keyword rule set.
//
// Rules are fetched from the rule service and cached in memory according to
// the service's Cache-Control max-age. The service is selected with
// KOKO_KEYWORDS_URL, or KOKO_KEYWORDS_AUTH against api.kokocares.org.
//
// Usage:
//
//	# Match one text
//	keywords match "i want to kms"
//
//	# Restrict to categories
//	keywords match --filter "category=suicide,selfharm" "some text"
//
//	# Serve POST /match over HTTP
//	keywords serve --config config.yaml
//
//	# Check a rule payload before publishing it
//	keywords lint rules.json
//
//	# Fetch, summarise and save the current rules
//	keywords rules fetch --out rules.json
package main

func main() {
	Execute()
}
