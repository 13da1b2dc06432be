package main

// extractJS 在页面中提取正文：先去掉导航、页脚等噪声节点，再按常见英文站点的正文容器查找，
// 找不到时遍历全页较长段落兜底。
const extractJS = `(function () {
  var noise = document.querySelectorAll("nav, header, footer, aside, script, style, noscript, form, [role=navigation], .share, .social, .related, .newsletter, .advertisement");
  for (var n = 0; n < noise.length; n++) {
    noise[n].remove();
  }

  var selectors = [
    "[itemprop=articleBody]",
    "article .entry-content",
    "article",
    "main",
    ".entry-content",
    ".post-content",
    ".article-body",
    ".article-content",
    ".story-body",
    "#main-content",
    "#content"
  ];

  var text = "";
  for (var i = 0; i < selectors.length; i++) {
    var el = document.querySelector(selectors[i]);
    text = el ? (el.innerText || "").trim() : "";
    if (text.length > 200) {
      break;
    }
  }

  if (text.length < 200) {
    var nodes = Array.prototype.slice.call(document.querySelectorAll("p"));
    var pieces = [];
    var total = 0;
    for (var j = 0; j < nodes.length; j++) {
      var t = (nodes[j].innerText || "").trim();
      if (t.length >= 40) {
        pieces.push(t);
        total += t.length;
      }
      if (total > 8000) break;
    }
    text = pieces.join("\n\n");
  }

  return text.replace(/[ \t]+\n/g, "\n").trim();
})();`
