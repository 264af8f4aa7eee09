package blocks

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// embedProvider lists the hosts a provider's official embed snippet is
// allowed to reference. A snippet may carry at most one external script,
// and iframes may only point at the provider's own embed hosts.
type embedProvider struct {
	scriptHosts []string
	frameHosts  []string
}

var embedProviders = map[string]embedProvider{
	"instagram": {
		scriptHosts: []string{"www.instagram.com", "instagram.com"},
		frameHosts:  []string{"www.instagram.com", "instagram.com"},
	},
	"tiktok": {
		scriptHosts: []string{"www.tiktok.com", "tiktok.com"},
		frameHosts:  []string{"www.tiktok.com", "tiktok.com"},
	},
	"x": {
		scriptHosts: []string{"platform.twitter.com", "platform.x.com"},
		frameHosts:  []string{"platform.twitter.com", "platform.x.com"},
	},
	"youtube": {
		// youtube embeds are plain iframes, no script
		frameHosts: []string{"www.youtube.com", "www.youtube-nocookie.com", "youtube.com"},
	},
}

// validateEmbedHTML parses the snippet and rejects anything beyond what an
// official embed code contains: inline scripts, event handler attributes,
// srcdoc iframes, javascript: URLs, and scripts or iframes pointing at
// hosts other than the provider's.
func validateEmbedHTML(provider, snippet string) error {
	nodes, err := html.ParseFragment(strings.NewReader(snippet), &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	})
	if err != nil {
		return fmt.Errorf("does not parse as html")
	}

	allowed := embedProviders[provider]
	scripts := 0

	var walk func(*html.Node) error
	walk = func(n *html.Node) error {
		if n.Type == html.ElementNode {
			if err := checkElement(n, allowed, &scripts); err != nil {
				return err
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := walk(c); err != nil {
				return err
			}
		}

		return nil
	}

	for _, n := range nodes {
		if err := walk(n); err != nil {
			return err
		}
	}

	if scripts > 1 {
		return fmt.Errorf("at most one provider script is allowed")
	}

	return nil
}

func checkElement(n *html.Node, allowed embedProvider, scripts *int) error {
	name := strings.ToLower(n.Data)

	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if strings.HasPrefix(key, "on") {
			return fmt.Errorf("event handler attribute %q is not allowed", attr.Key)
		}
		// srcdoc documents run same-origin, so any script inside one
		// would bypass the host checks below.
		if key == "srcdoc" {
			return fmt.Errorf("srcdoc attributes are not allowed")
		}
		if key == "href" || key == "src" {
			if strings.HasPrefix(strings.TrimSpace(strings.ToLower(attr.Val)), "javascript:") {
				return fmt.Errorf("javascript: urls are not allowed")
			}
		}
	}

	switch name {
	case "script":
		*scripts++
		src := attrValue(n, "src")
		if src == "" {
			return fmt.Errorf("inline scripts are not allowed")
		}
		if !hostAllowed(src, allowed.scriptHosts) {
			return fmt.Errorf("script host not allowed for this provider")
		}
	case "iframe":
		src := attrValue(n, "src")
		if src == "" {
			return fmt.Errorf("iframes must carry a src")
		}
		if !hostAllowed(src, allowed.frameHosts) {
			return fmt.Errorf("iframe host not allowed for this provider")
		}
	case "object", "embed", "form":
		return fmt.Errorf("<%s> is not allowed in embeds", name)
	}

	return nil
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val
		}
	}

	return ""
}

func hostAllowed(src string, hosts []string) bool {
	u, err := url.Parse(src)
	if err != nil {
		return false
	}

	host := u.Host
	// Protocol-relative srcs like //www.instagram.com/embed.js keep a host.
	if host == "" {
		return false
	}

	for _, allowed := range hosts {
		if strings.EqualFold(host, allowed) {
			return true
		}
	}

	return false
}
