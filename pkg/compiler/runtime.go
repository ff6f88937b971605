package compiler

// runtimePrelude is emitted at the top of every generated program.
//
// The host supplies $host.write(text) and $host.readLine(). Without one the
// program falls back to Node's stdout and a synchronous read of stdin, so the
// output also runs as a plain script.
const runtimePrelude = `"use strict";

var $rt = (typeof $host !== "undefined") ? $host : (function () {
  var lines = null;
  return {
    write: function (s) { process.stdout.write(s); },
    readLine: function () {
      if (lines === null) {
        lines = require("fs").readFileSync(0, "utf8").split(/\r?\n/);
      }
      return lines.length > 0 ? lines.shift() : "";
    }
  };
})();

var $gosub = [];
var $in = [];

function $print() {
  var s = "";
  for (var i = 0; i < arguments.length; i++) {
    s += String(arguments[i]);
  }
  $rt.write(s);
}

function $div(a, b) {
  if (b === 0) {
    throw new Error("division by zero");
  }
  return a / b;
}

function $num(s) {
  var n = parseFloat(s);
  return isNaN(n) ? 0 : n;
}

function $int(s) {
  return Math.trunc($num(s));
}

function $input(prompt, n) {
  if (prompt !== null) {
    $rt.write(String(prompt));
  }
  var line = String($rt.readLine());
  var fields = n > 1 ? line.split(",") : [line];
  var out = [];
  for (var i = 0; i < n; i++) {
    out.push(i < fields.length ? fields[i].trim() : "");
  }
  return out;
}
`
