package styles

// Tip: To find icons use https://github.com/loichyan/nerdfix

var IconBell = "\U000F009A"
