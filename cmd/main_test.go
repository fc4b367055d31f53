// File: cmd/main_test.go
package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/uxsim/internal/config"
	"github.com/xkilldash9x/uxsim/internal/observability"
)

// resetForTest provides the single source of truth for resetting test state.
func resetForTest(t *testing.T) {
	t.Helper()

	// Keep a real ~/.uxsim/config.yaml out of the tests.
	homedir.DisableCache = true
	t.Setenv("HOME", t.TempDir())

	osExit = os.Exit

	// The first initialization wins, so the commands under test stay silent.
	observability.ResetForTest()
	observability.Initialize(config.LoggerConfig{Level: "fatal", Format: "console", ServiceName: "test"}, zapcore.AddSync(io.Discard))
	t.Cleanup(observability.ResetForTest)

	rootCmd = newRootCmd()
}

// executeCommand runs a pristine root command with args and returns what it
// wrote to stdout and stderr.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetForTest(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

const testPage = `<!DOCTYPE html>
<html><body>
  <div id="panel">
    <a id="save-btn" class="x-btn">Save</a>
    <div id="agree-wrap"><input id="agree-input" type="checkbox"></div>
    <input id="size-input" type="radio">
    <input id="name-input" type="text" value="">
  </div>
  <div id="messagebox-1" class="x-window x-message-box">
    <span id="msg-ok">OK</span>
    <input id="msg-text" type="text">
    <textarea id="msg-area"></textarea>
  </div>
</body></html>`

// testExt is a minimal Ext JS component manager over testPage.
const testExt = `
window.Ext = (function () {
	var cmps = {};
	function el(id) { return { dom: document.getElementById(id) }; }
	function define(id, xtypes, props) {
		var c = { id: id, rendered: true, isXType: function (x) { return xtypes.indexOf(x) !== -1; } };
		for (var k in props) { c[k] = props[k]; }
		cmps[id] = c;
		return c;
	}
	define('save', ['button'], { el: el('save-btn') });
	define('hidden', ['button'], { rendered: false });
	define('agree', ['checkbox', 'field'], { el: el('agree-wrap'), inputEl: el('agree-input') });
	define('size', ['radio', 'checkbox', 'field'], { el: el('size-input'), inputEl: el('size-input') });
	define('name', ['textfield', 'field'], { el: el('name-input'), inputEl: el('name-input') });
	define('panel', ['panel', 'container'], { el: el('panel') });
	var ok = define('msg-ok-btn', ['button'], { el: el('msg-ok') });
	var text = define('msg-text-field', ['textfield', 'field'], { el: el('msg-text'), inputEl: el('msg-text') });
	var area = define('msg-text-area', ['textareafield', 'textfield', 'field'], { el: el('msg-area'), inputEl: el('msg-area') });
	define('messagebox-1', ['messagebox', 'window'], {
		el: el('messagebox-1'),
		title: 'Confirm',
		multiline: false,
		msg: { getValue: function () { return 'Save changes?'; } },
		msgButtons: { ok: ok },
		textField: text,
		textArea: area,
		close: function () { window.closedBox = this.id; }
	});
	return { getCmp: function (id) { return cmps[id]; } };
})();
`

// testRecorder logs what the page listeners observe in window.log.
const testRecorder = `
window.log = [];
['save-btn', 'agree-input', 'size-input', 'msg-ok'].forEach(function (id) {
	['click', 'dblclick'].forEach(function (type) {
		document.getElementById(id).addEventListener(type, function (e) {
			log.push(id + ':' + e.type + ':' + e.button + ':' + e.ctrlKey);
		});
	});
});
['name-input', 'msg-text'].forEach(function (id) {
	['keydown', 'keypress', 'keyup'].forEach(function (type) {
		document.getElementById(id).addEventListener(type, function (e) {
			log.push(id + ':' + e.type + ':' + e.keyCode + ':' + e.charCode);
		});
	});
});
`

// testLegacyRecorder is testRecorder for a trident page.
const testLegacyRecorder = `
window.log = [];
document.getElementById('save-btn').attachEvent('onclick', function (e) {
	log.push('save-btn:' + e.type + ':' + e.button);
});
`

type pageFiles struct {
	dir      string
	html     string
	ext      string
	recorder string
	legacy   string
}

// args returns the flags loading the page with the Ext stub and recorder.
func (p pageFiles) args() []string {
	return []string{"--html", p.html, "--script", p.ext, "--script", p.recorder}
}

func writePageFiles(t *testing.T) pageFiles {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}
	return pageFiles{
		dir:      dir,
		html:     write("page.html", testPage),
		ext:      write("ext.js", testExt),
		recorder: write("recorder.js", testRecorder),
		legacy:   write("legacy.js", testLegacyRecorder),
	}
}
