package net

import "net/url"

// Referer computes the Referer header sent when target is requested from
// a page at referrer. An empty result means the header is omitted.
func Referer(target, referrer *url.URL, policy RefPolicy) string {
	if referrer == nil || target == nil || !IsNetworkURL(referrer) {
		return ""
	}
	downgrade := referrer.Scheme == "https" && target.Scheme == "http"
	sameHost := referrer.Host == target.Host

	full := func() string {
		u := url.URL{Scheme: referrer.Scheme, Host: referrer.Host, Path: referrer.Path}
		if u.Path == "" {
			u.Path = "/"
		}
		return u.String()
	}
	origin := func() string {
		return referrer.Scheme + "://" + referrer.Host + "/"
	}

	switch policy.OrDefault() {
	case UnsafeURL:
		return referrer.String()
	case NoReferrerWhenDowngrade:
		if !downgrade {
			return full()
		}
	case SameOrigin:
		if sameHost {
			return full()
		}
	case OriginWhenCrossOrigin:
		if sameHost {
			return full()
		}
		return origin()
	case Origin:
		return origin()
	case StrictOrigin:
		if !downgrade {
			return origin()
		}
	case StrictOriginWhenCrossOrigin:
		if downgrade {
			return ""
		}
		if sameHost {
			return full()
		}
		return origin()
	}
	return ""
}
