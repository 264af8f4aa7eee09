package server

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/shopforge/shopforge/internal/errors"
)

// handlePreview serves the rendered shop page plus the client half of the
// preview protocol: apply publish frames, answer with ready frames.
func (s *PreviewServer) handlePreview(w http.ResponseWriter, r *http.Request) {
	if shopID := r.PathValue("shopID"); shopID != s.session.ShopID() {
		http.NotFound(w, r)
		return
	}

	snap := s.session.Snapshot()

	var body bytes.Buffer
	if err := s.themes.Render(r.Context(), &body, snap); err != nil {
		if errors.HasCode(err, errors.CodeUnknownTheme) {
			writeError(w, err)
			return
		}
		s.logger.Error(r.Context(), err, "render preview", "theme", snap.ThemeID)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, previewShell, snap.ThemeID, body.String(), previewScript)
}

const previewShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Preview</title>
<link rel="stylesheet" href="/themes/%s/styles.css">
</head>
<body>
<div id="preview-root">%s</div>
<div id="preview-loading" hidden>Loading preview&hellip;</div>
<script>%s</script>
</body>
</html>`

// previewScript runs inside the preview frame. Reload frames replace the
// whole document (a fresh renderer instance, acknowledged with ready);
// non-reload frames re-fetch the rendered body in place.
const previewScript = `
(function () {
    var loading = document.getElementById('preview-loading');
    var root = document.getElementById('preview-root');
    var ws;

    function connect() {
        var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
        ws = new WebSocket(proto + location.host + '/ws');

        ws.onmessage = function (event) {
            var frame;
            try { frame = JSON.parse(event.data); } catch (e) { return; }
            if (frame.type !== 'publish') return;

            if (frame.reload) {
                loading.hidden = false;
                fetch(location.pathname)
                    .then(function (res) { return res.text(); })
                    .then(function (html) {
                        var doc = new DOMParser().parseFromString(html, 'text/html');
                        root.innerHTML = doc.getElementById('preview-root').innerHTML;
                        loading.hidden = true;
                        ws.send(JSON.stringify({ type: 'ready', generation: frame.generation }));
                    });
            } else {
                fetch(location.pathname)
                    .then(function (res) { return res.text(); })
                    .then(function (html) {
                        var doc = new DOMParser().parseFromString(html, 'text/html');
                        root.innerHTML = doc.getElementById('preview-root').innerHTML;
                    });
            }
        };

        ws.onclose = function () {
            setTimeout(connect, 1000);
        };
    }

    connect();
})();
`
